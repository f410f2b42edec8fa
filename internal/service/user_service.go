package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgPasswordMismatch = "The two password fields didn't match."
	msgUsernameTaken    = "A user with that username already exists."
	msgBadCredentials   = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// GetByID satisfies middleware.UserLoader.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// Signup registers an account. Every invalid field is reported in one error.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	formErr := models.NewValidationError(msgFormInvalid)
	if err := validation.ValidateUsername(username); err != nil {
		formErr.WithField("username", err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		formErr.WithField("email", err.Error())
	}
	if in.Password == "" {
		formErr.WithField("password1", msgFieldRequired)
	}
	if in.PasswordConfirm == "" {
		formErr.WithField("password2", msgFieldRequired)
	} else if in.Password != "" && in.Password != in.PasswordConfirm {
		formErr.WithField("password2", msgPasswordMismatch)
	} else if in.Password != "" {
		if err := validation.ValidatePassword(in.Password, username); err != nil {
			formErr.WithField("password2", err.Error())
		}
	}
	if len(formErr.Fields) > 0 {
		return nil, formErr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.ErrorCode(err) == models.CodeConflict {
			return nil, models.NewFieldError("username", msgUsernameTaken)
		}
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError(msgBadCredentials)
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewValidationError(msgBadCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewValidationError(msgBadCredentials)
	}
	return user, nil
}

// DeleteUser removes a user with their posts and comments.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}
