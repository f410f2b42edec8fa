package server

import (
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm carries submitted values back into the post form.
type postForm struct {
	Text     string
	GroupID  uint
	Image    string
	HasImage bool
}

func postFormFrom(post *models.Post) postForm {
	form := postForm{Text: post.Text, Image: post.ImagePath(), HasImage: post.HasImage()}
	if post.GroupID != nil {
		form.GroupID = *post.GroupID
	}
	return form
}

func (s *Server) renderPostForm(c *fiber.Ctx, form postForm, post *models.Post, errs map[string]string) error {
	groups, err := s.groupService.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	return s.render(c, "post_form", fiber.Map{
		"Title":  title,
		"IsEdit": post != nil,
		"Post":   post,
		"Form":   form,
		"Groups": groups,
		"Errors": errs,
	})
}

// NewPostForm renders an empty post form.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, postForm{}, nil, nil)
}

// CreatePost publishes a post and returns to the global feed. An invalid
// form is shown again with the submitted values.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	image, err := readUpload(c, "image")
	if err != nil {
		return err
	}
	in := service.CreatePostInput{
		Text:    c.FormValue("text"),
		GroupID: parseGroupID(c.FormValue("group")),
		Image:   image,
	}

	if _, err := s.postService.CreatePost(c.UserContext(), callerFrom(c), in); err != nil {
		if isValidation(err) {
			form := postForm{Text: in.Text}
			if in.GroupID != nil {
				form.GroupID = *in.GroupID
			}
			return s.renderPostForm(c, form, nil, formErrors(err))
		}
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// PostView renders one post with its comments and the comment form.
func (s *Server) PostView(c *fiber.Ctx) error {
	return s.renderPostView(c, "", nil)
}

func (s *Server) renderPostView(c *fiber.Ctx, commentText string, errs map[string]string) error {
	ctx := c.UserContext()
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(ctx, usernameParam(c), postID)
	if err != nil {
		return err
	}
	stats, err := s.profileService.Stats(ctx, &post.Author, callerFrom(c))
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(ctx, post.ID)
	if err != nil {
		return err
	}

	caller := callerFrom(c)
	return s.render(c, "post", fiber.Map{
		"Title":       post.Author.FullName(),
		"Post":        post,
		"Profile":     stats,
		"Comments":    comments,
		"CommentText": commentText,
		"Errors":      errs,
		"CanEdit":     caller != nil && caller.ID == post.AuthorID,
	})
}

// EditPostForm renders the edit form to the author. Anyone else is sent back
// to the post.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), usernameParam(c), postID)
	if err != nil {
		return err
	}
	if caller := callerFrom(c); caller == nil || caller.ID != post.AuthorID {
		return c.Redirect(postURL(post.Author.Username, post.ID), fiber.StatusFound)
	}
	return s.renderPostForm(c, postFormFrom(post), post, nil)
}

// EditPost saves the author's changes and returns to the post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	username := usernameParam(c)
	image, err := readUpload(c, "image")
	if err != nil {
		return err
	}
	in := service.UpdatePostInput{
		Username:   username,
		PostID:     postID,
		Text:       c.FormValue("text"),
		GroupID:    parseGroupID(c.FormValue("group")),
		Image:      image,
		ClearImage: c.FormValue("image-clear") != "",
	}

	post, err := s.postService.UpdatePost(ctx, callerFrom(c), in)
	switch {
	case err == nil:
		return c.Redirect(postURL(post.Author.Username, post.ID), fiber.StatusFound)
	case models.ErrorCode(err) == models.CodeForbidden:
		return c.Redirect(postURL(username, postID), fiber.StatusFound)
	case isValidation(err):
		current, getErr := s.postService.GetPost(ctx, username, postID)
		if getErr != nil {
			return getErr
		}
		form := postForm{Text: in.Text, Image: current.ImagePath(), HasImage: current.HasImage()}
		if in.GroupID != nil {
			form.GroupID = *in.GroupID
		}
		return s.renderPostForm(c, form, current, formErrors(err))
	default:
		return err
	}
}

// AddComment appends the caller's comment and returns to the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	username := usernameParam(c)
	text := c.FormValue("text")

	_, err = s.commentService.CreateComment(c.UserContext(), callerFrom(c), service.CreateCommentInput{
		Username: username,
		PostID:   postID,
		Text:     text,
	})
	if err != nil {
		if isValidation(err) {
			return s.renderPostView(c, text, formErrors(err))
		}
		return err
	}
	return c.Redirect(postURL(username, postID), fiber.StatusFound)
}
