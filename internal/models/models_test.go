package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_CodeSurvivesWrapping(t *testing.T) {
	base := NewNotFoundError("Post", 12)
	wrapped := fmt.Errorf("load post: %w", base)

	assert.Equal(t, "Post 12 not found", base.Error())
	assert.Equal(t, CodeNotFound, ErrorCode(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}

func TestAppError_FieldMessages(t *testing.T) {
	err := NewFieldError("text", "This field is required.")
	err.WithField("group", "Select a valid choice.")

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "This field is required.", err.FieldError("text"))
	assert.Equal(t, "Select a valid choice.", err.FieldError("group"))
	assert.Empty(t, err.FieldError("image"))

	var nilErr *AppError
	assert.Empty(t, nilErr.FieldError("text"))
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}

func TestPost_ImagePaths(t *testing.T) {
	p := &Post{}
	assert.False(t, p.HasImage())
	assert.Empty(t, p.ImagePath())
	assert.Empty(t, p.ImageWebPPath())

	path := "posts/abc/master.jpg"
	p.Image = &path
	assert.True(t, p.HasImage())
	assert.Equal(t, "posts/abc/master.jpg", p.ImagePath())
	assert.Equal(t, "posts/abc/master.webp", p.ImageWebPPath())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "leo", (&User{Username: "leo"}).FullName())
	assert.Equal(t, "Leo Tolstoy", (&User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}).FullName())
}
