package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followEdges(t *testing.T, s *services) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Follow{}).Count(&n).Error)
	return n
}

func TestFollowService_FollowIsIdempotent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, s.db, "reader")
	testutil.CreateUser(t, s.db, "leo")

	author, err := s.follows.Follow(ctx, reader, "leo")
	require.NoError(t, err)
	assert.Equal(t, "leo", author.Username)

	_, err = s.follows.Follow(ctx, reader, "leo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), followEdges(t, s))

	stats, err := s.profiles.Profile(ctx, "leo", reader)
	require.NoError(t, err)
	assert.True(t, stats.IsFollowing)
	assert.Equal(t, int64(1), stats.Followers)
}

func TestFollowService_SelfFollowIsNoop(t *testing.T) {
	s := newServices(t)
	leo := testutil.CreateUser(t, s.db, "leo")

	_, err := s.follows.Follow(context.Background(), leo, "leo")
	require.NoError(t, err)
	assert.Zero(t, followEdges(t, s))
}

func TestFollowService_Unfollow(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, s.db, "reader")
	leo := testutil.CreateUser(t, s.db, "leo")
	testutil.Follow(t, s.db, reader, leo)

	_, err := s.follows.Unfollow(ctx, reader, "leo")
	require.NoError(t, err)
	assert.Zero(t, followEdges(t, s))

	// Unfollowing again is not an error.
	_, err = s.follows.Unfollow(ctx, reader, "leo")
	require.NoError(t, err)
}

func TestFollowService_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, s.db, "reader")
	testutil.CreateUser(t, s.db, "leo")

	_, err := s.follows.Follow(ctx, nil, "leo")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = s.follows.Unfollow(ctx, nil, "leo")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = s.follows.Follow(ctx, reader, "ghost")
	assertCode(t, err, models.CodeNotFound)
	_, err = s.follows.Unfollow(ctx, reader, "ghost")
	assertCode(t, err, models.CodeNotFound)
}
