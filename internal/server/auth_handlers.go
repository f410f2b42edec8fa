package server

import (
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupForm struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// SignupForm renders the registration form.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, "auth/signup", fiber.Map{"Title": "Sign up", "Form": signupForm{}})
}

// Signup registers an account and sends the new user to the login page.
func (s *Server) Signup(c *fiber.Ctx) error {
	in := service.SignupInput{
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		FirstName:       c.FormValue("first_name"),
		LastName:        c.FormValue("last_name"),
		Password:        c.FormValue("password1"),
		PasswordConfirm: c.FormValue("password2"),
	}
	if _, err := s.userService.Signup(c.UserContext(), in); err != nil {
		if !isValidation(err) {
			return err
		}
		return s.render(c, "auth/signup", fiber.Map{
			"Title":  "Sign up",
			"Form":   signupForm{Username: in.Username, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName},
			"Errors": formErrors(err),
		})
	}
	return c.Redirect("/auth/login", fiber.StatusFound)
}

// LoginForm renders the login form, keeping the return path.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, "auth/login", fiber.Map{"Title": "Log in", "Next": c.Query("next"), "Username": ""})
}

// Login starts a session and continues to "next" when it is a local path.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := c.FormValue("next", c.Query("next"))

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if !isValidation(err) {
			return err
		}
		return s.render(c, "auth/login", fiber.Map{
			"Title":    "Log in",
			"Next":     next,
			"Username": username,
			"Errors":   formErrors(err),
		})
	}

	if err := s.sessions.Login(c, user.ID); err != nil {
		return err
	}
	return c.Redirect(safeNext(next), fiber.StatusFound)
}

// Logout ends the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Logout(c)
	return c.Redirect("/", fiber.StatusFound)
}
