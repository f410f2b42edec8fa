package server

import (
	"errors"

	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// render executes a page template inside the main layout. Every page gets
// the caller for the navigation bar.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["CurrentUser"] = callerFrom(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	return c.Render(name, data)
}

// formErrors extracts per-field messages from a validation error. Messages not
// bound to a field are returned under "__all__".
func formErrors(err error) map[string]string {
	out := map[string]string{}
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return out
	}
	for field, msg := range appErr.Fields {
		out[field] = msg
	}
	if len(out) == 0 {
		out["__all__"] = appErr.Message
	}
	return out
}

func isValidation(err error) bool {
	return err != nil && models.ErrorCode(err) == models.CodeValidation
}
