package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListOrdersNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	older := testutil.CreatePost(t, db, leo, nil, "older", base)
	newer := testutil.CreatePost(t, db, leo, nil, "newer", base.Add(time.Hour))
	tie := testutil.CreatePost(t, db, leo, nil, "same time, higher id", base.Add(time.Hour))

	posts, err := repo.List(ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint{tie.ID, newer.ID, older.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, "leo", posts[0].Author.Username)
	assert.Nil(t, posts[0].Group)
}

func TestPostRepository_FiltersAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	amy := testutil.CreateUser(t, db, "amy")
	reader := testutil.CreateUser(t, db, "reader")
	cats := testutil.CreateGroup(t, db, "cats")
	now := time.Now()

	inGroup := testutil.CreatePost(t, db, leo, cats, "leo about cats", now)
	testutil.CreatePost(t, db, leo, nil, "leo elsewhere", now.Add(-time.Minute))
	amyPost := testutil.CreatePost(t, db, amy, nil, "amy", now.Add(-2*time.Minute))
	testutil.CreateComment(t, db, inGroup, amy, "nice")
	testutil.CreateComment(t, db, inGroup, leo, "thanks")
	testutil.Follow(t, db, reader, amy)

	byGroup, err := repo.List(ctx, PostFilter{GroupID: cats.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, inGroup.ID, byGroup[0].ID)
	assert.Equal(t, 2, byGroup[0].CommentsCount)
	require.NotNil(t, byGroup[0].Group)
	assert.Equal(t, "cats", byGroup[0].Group.Slug)

	byAuthor, err := repo.Count(ctx, PostFilter{AuthorID: leo.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byAuthor)

	followed, err := repo.List(ctx, PostFilter{FollowerID: reader.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, amyPost.ID, followed[0].ID)

	none, err := repo.Count(ctx, PostFilter{FollowerID: leo.ID})
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestPostRepository_PaginatesWithOffset(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	leo := testutil.CreateUser(t, db, "leo")
	base := time.Now()
	for i := 0; i < 13; i++ {
		testutil.CreatePost(t, db, leo, nil, "post", base.Add(time.Duration(i)*time.Second))
	}

	second, err := repo.List(context.Background(), PostFilter{}, 10, 10)
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestPostRepository_UpdateKeepsAuthorAndDate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	cats := testutil.CreateGroup(t, db, "cats")
	pub := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	post := testutil.CreatePost(t, db, leo, cats, "draft", pub)

	post.Text = "final"
	post.GroupID = nil
	post.PubDate = time.Now()
	require.NoError(t, repo.Update(ctx, post))

	stored, err := repo.GetByAuthorAndID(ctx, leo.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Text)
	assert.Nil(t, stored.GroupID)
	assert.True(t, pub.Equal(stored.PubDate.UTC()))
	assert.Equal(t, leo.ID, stored.AuthorID)

	_, err = repo.GetByAuthorAndID(ctx, leo.ID+100, post.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowRepository_IdempotentEdges(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	created, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	followers, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	following, err := repo.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	exists, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCommentRepository_ListOldestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePost(t, db, leo, nil, "post", time.Now())
	first := &models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "first", Created: time.Now().Add(-time.Minute)}
	second := &models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "second", Created: time.Now()}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "leo", comments[0].Author.Username)

	err = repo.Create(ctx, &models.Comment{PostID: 999, AuthorID: leo.ID, Text: "orphan", Created: time.Now()})
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_CreateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "leo", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Create(ctx, &models.User{Username: "leo", Password: "hash"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	amy := testutil.CreateUser(t, db, "amy")
	testutil.Follow(t, db, amy, user)
	err = repo.Delete(ctx, user.ID)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	loner := testutil.CreateUser(t, db, "loner")
	testutil.CreatePost(t, db, loner, nil, "bye", time.Now())
	require.NoError(t, repo.Delete(ctx, loner.ID))
	_, err = repo.GetByID(ctx, loner.ID)
	assert.True(t, models.IsNotFound(err))

	var posts int64
	require.NoError(t, db.Model(&models.Post{}).Where("author_id = ?", loner.ID).Count(&posts).Error)
	assert.Zero(t, posts)
}

func TestGroupRepository_UpsertAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Group{Title: "Cats", Slug: "cats"}))
	require.NoError(t, repo.Upsert(ctx, &models.Group{Title: "Cats & Kittens", Slug: "cats", Description: "All felines"}))

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Cats & Kittens", groups[0].Title)

	leo := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePost(t, db, leo, &groups[0], "in cats", time.Now())

	require.NoError(t, repo.DeleteBySlug(ctx, "cats"))
	assert.True(t, models.IsNotFound(repo.DeleteBySlug(ctx, "cats")))

	stored, err := NewPostRepository(db).GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GroupID)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	tx := NewTxManager(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := users.Create(ctx, &models.User{Username: "ghost", Password: "x"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = users.GetByUsername(ctx, "ghost")
	assert.True(t, models.IsNotFound(err))
}
