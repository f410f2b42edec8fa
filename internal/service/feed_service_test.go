package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestFeedService_GlobalPaginatesNewestFirst(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	leo := testutil.CreateUser(t, s.db, "leo")

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var created []*models.Post
	for i := 0; i < 13; i++ {
		created = append(created, testutil.CreatePost(t, s.db, leo, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	first, err := s.feeds.Feed(ctx, GlobalScope(), 1, nil)
	require.NoError(t, err)
	require.Len(t, first.Posts, 10)
	assert.Equal(t, created[12].ID, first.Posts[0].ID)
	assert.Equal(t, created[3].ID, first.Posts[9].ID)
	assert.Equal(t, int64(13), first.Page.Total)
	assert.Equal(t, 2, first.Page.NumPages)
	assert.True(t, first.Page.HasNext())

	second, err := s.feeds.Feed(ctx, GlobalScope(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{created[2].ID, created[1].ID, created[0].ID}, postIDs(second.Posts))
	assert.False(t, second.Page.HasNext())

	clamped, err := s.feeds.Feed(ctx, GlobalScope(), 40, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Page.Number)
	assert.Equal(t, postIDs(second.Posts), postIDs(clamped.Posts))
}

func TestFeedService_EmptyFeedHasOnePage(t *testing.T) {
	s := newServices(t)

	feed, err := s.feeds.Feed(context.Background(), GlobalScope(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
	assert.NotNil(t, feed.Posts)
	assert.Equal(t, 1, feed.Page.Number)
	assert.Equal(t, 1, feed.Page.NumPages)
}

func TestFeedService_GroupScope(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	leo := testutil.CreateUser(t, s.db, "leo")
	cats := testutil.CreateGroup(t, s.db, "cats")
	dogs := testutil.CreateGroup(t, s.db, "dogs")
	now := time.Now()

	catPost := testutil.CreatePost(t, s.db, leo, cats, "meow", now)
	testutil.CreatePost(t, s.db, leo, dogs, "woof", now.Add(time.Second))
	testutil.CreatePost(t, s.db, leo, nil, "no group", now.Add(2*time.Second))

	feed, err := s.feeds.Feed(ctx, GroupScope("cats"), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{catPost.ID}, postIDs(feed.Posts))
	require.NotNil(t, feed.Group)
	assert.Equal(t, cats.ID, feed.Group.ID)

	_, err = s.feeds.Feed(ctx, GroupScope("missing"), 1, nil)
	assertCode(t, err, models.CodeNotFound)
}

func TestFeedService_AuthorScope(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	leo := testutil.CreateUser(t, s.db, "leo")
	amy := testutil.CreateUser(t, s.db, "amy")
	now := time.Now()

	leoPost := testutil.CreatePost(t, s.db, leo, nil, "by leo", now)
	testutil.CreatePost(t, s.db, amy, nil, "by amy", now.Add(time.Second))

	feed, err := s.feeds.Feed(ctx, AuthorScope("leo"), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{leoPost.ID}, postIDs(feed.Posts))
	require.NotNil(t, feed.Author)
	assert.Equal(t, "leo", feed.Author.Username)

	_, err = s.feeds.Feed(ctx, AuthorScope("ghost"), 1, nil)
	assertCode(t, err, models.CodeNotFound)
}

func TestFeedService_FollowingScope(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, s.db, "reader")
	stranger := testutil.CreateUser(t, s.db, "stranger")
	leo := testutil.CreateUser(t, s.db, "leo")
	amy := testutil.CreateUser(t, s.db, "amy")
	now := time.Now()

	_, err := s.feeds.Feed(ctx, FollowingScope(), 1, nil)
	assertCode(t, err, models.CodeUnauthorized)

	testutil.Follow(t, s.db, reader, leo)
	leoPost := testutil.CreatePost(t, s.db, leo, nil, "from leo", now)
	testutil.CreatePost(t, s.db, amy, nil, "from amy", now.Add(time.Second))

	feed, err := s.feeds.Feed(ctx, FollowingScope(), 1, reader)
	require.NoError(t, err)
	assert.Equal(t, []uint{leoPost.ID}, postIDs(feed.Posts))

	// A fresh post by a followed author shows up first for followers only.
	_, err = s.posts.CreatePost(ctx, leo, CreatePostInput{Text: "fresh"})
	require.NoError(t, err)

	feed, err = s.feeds.Feed(ctx, FollowingScope(), 1, reader)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, "fresh", feed.Posts[0].Text)

	other, err := s.feeds.Feed(ctx, FollowingScope(), 1, stranger)
	require.NoError(t, err)
	assert.Empty(t, other.Posts)
}
