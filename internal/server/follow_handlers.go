package server

import "github.com/gofiber/fiber/v2"

// ProfileFollow subscribes the caller to the author and returns to the profile.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, err := s.followService.Follow(c.UserContext(), callerFrom(c), usernameParam(c))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}

// ProfileUnfollow removes the subscription and returns to the profile.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), callerFrom(c), usernameParam(c))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}
