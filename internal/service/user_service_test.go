package service

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupInput {
	return SignupInput{
		Username:        "leo",
		Email:           "leo@example.com",
		FirstName:       "Leo",
		LastName:        "Tolstoy",
		Password:        "war-and-peace",
		PasswordConfirm: "war-and-peace",
	}
}

func TestUserService_SignupAndAuthenticate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, err := s.users.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "war-and-peace", user.Password)
	assert.Equal(t, "Leo Tolstoy", user.FullName())

	authed, err := s.users.Authenticate(ctx, "leo", "war-and-peace")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = s.users.Authenticate(ctx, "leo", "wrong-password")
	assertCode(t, err, models.CodeValidation)
	_, err = s.users.Authenticate(ctx, "ghost", "war-and-peace")
	assertCode(t, err, models.CodeValidation)
	_, err = s.users.Authenticate(ctx, "", "")
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_SignupValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	testutil.CreateUser(t, s.db, "taken")

	tests := []struct {
		name  string
		edit  func(in *SignupInput)
		field string
	}{
		{"missing username", func(in *SignupInput) { in.Username = "" }, "username"},
		{"reserved username", func(in *SignupInput) { in.Username = "follow" }, "username"},
		{"bad characters", func(in *SignupInput) { in.Username = "leo tolstoy" }, "username"},
		{"bad email", func(in *SignupInput) { in.Email = "nope" }, "email"},
		{"missing password", func(in *SignupInput) { in.Password = "" }, "password1"},
		{"mismatch", func(in *SignupInput) { in.PasswordConfirm = "something-else" }, "password2"},
		{"short password", func(in *SignupInput) { in.Password, in.PasswordConfirm = "short", "short" }, "password2"},
		{"numeric password", func(in *SignupInput) { in.Password, in.PasswordConfirm = "1234567890", "1234567890" }, "password2"},
		{"duplicate username", func(in *SignupInput) { in.Username = "taken" }, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			tt.edit(&in)
			_, err := s.users.Signup(ctx, in)
			assertFieldError(t, err, tt.field)
		})
	}

	var n int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUserService_DeleteUser(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	leo := testutil.CreateUser(t, s.db, "leo")
	amy := testutil.CreateUser(t, s.db, "amy")
	bob := testutil.CreateUser(t, s.db, "bob")
	testutil.Follow(t, s.db, amy, leo)
	testutil.CreatePost(t, s.db, bob, nil, "bob's post", time.Now())

	err := s.users.DeleteUser(ctx, "leo")
	assertCode(t, err, models.CodeConflict)

	require.NoError(t, s.users.DeleteUser(ctx, "bob"))
	_, err = s.users.GetByUsername(ctx, "bob")
	assertCode(t, err, models.CodeNotFound)
	assert.Zero(t, countPosts(t, s.db))

	err = s.users.DeleteUser(ctx, "ghost")
	assertCode(t, err, models.CodeNotFound)
}
