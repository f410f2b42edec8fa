package server

import (
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index renders the global feed. The route is wrapped in the page cache.
func (s *Server) Index(c *fiber.Ctx) error {
	feed, err := s.feedService.Feed(c.UserContext(), service.GlobalScope(), parsePage(c), callerFrom(c))
	if err != nil {
		return err
	}
	return s.render(c, "index", fiber.Map{
		"Title": "Latest updates on the site",
		"Feed":  feed,
	})
}

// GroupPosts renders the posts of one group.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Feed(c.UserContext(), service.GroupScope(c.Params("slug")), parsePage(c), callerFrom(c))
	if err != nil {
		return err
	}
	return s.render(c, "group", fiber.Map{
		"Title": feed.Group.Title,
		"Group": feed.Group,
		"Feed":  feed,
	})
}

// FollowIndex renders posts by the authors the caller follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	feed, err := s.feedService.Feed(c.UserContext(), service.FollowingScope(), parsePage(c), callerFrom(c))
	if err != nil {
		return err
	}
	return s.render(c, "follow", fiber.Map{
		"Title": "Your subscriptions",
		"Feed":  feed,
	})
}

// Profile renders an author's posts with their counters.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerFrom(c)

	feed, err := s.feedService.Feed(ctx, service.AuthorScope(usernameParam(c)), parsePage(c), caller)
	if err != nil {
		return err
	}
	stats, err := s.profileService.Stats(ctx, feed.Author, caller)
	if err != nil {
		return err
	}
	return s.render(c, "profile", fiber.Map{
		"Title":   feed.Author.FullName(),
		"Profile": stats,
		"Feed":    feed,
		"IsSelf":  caller != nil && caller.ID == feed.Author.ID,
	})
}
