package server

import (
	"errors"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// mapServiceError converts an error into an HTTP status code.
func mapServiceError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders error pages. Internal details are logged, never shown.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)

	switch status {
	case fiber.StatusUnauthorized:
		return c.Redirect(middleware.LoginURL(c.OriginalURL()), fiber.StatusFound)
	case fiber.StatusNotFound:
		c.Status(fiber.StatusNotFound)
		return s.render(c, "errors/404", fiber.Map{"Title": "Page not found", "Path": c.Path()})
	case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusTooManyRequests, fiber.StatusServiceUnavailable:
		return c.Status(status).SendString(utils.StatusMessage(status))
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"error", err,
		"path", c.Path(),
		"method", c.Method(),
	)
	c.Status(fiber.StatusInternalServerError)
	if renderErr := s.render(c, "errors/500", fiber.Map{"Title": "Server error"}); renderErr != nil {
		return c.SendString("Internal Server Error")
	}
	return nil
}
