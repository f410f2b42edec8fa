package seed

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func smallOptions() Options {
	return Options{
		Users:              6,
		Groups:             2,
		Posts:              25,
		MaxCommentsPerPost: 3,
		MaxFollowsPerUser:  3,
		MaxDays:            10,
		Seed:               42,
		SkipBcrypt:         true,
	}
}

func rows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRun_CreatesRequestedRows(t *testing.T) {
	db := testutil.NewDB(t)

	res, err := Run(context.Background(), db, smallOptions())
	require.NoError(t, err)

	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 2, res.Groups)
	assert.Equal(t, 25, res.Posts)
	assert.EqualValues(t, res.Users, rows(t, db, &models.User{}))
	assert.EqualValues(t, res.Groups, rows(t, db, &models.Group{}))
	assert.EqualValues(t, res.Posts, rows(t, db, &models.Post{}))
	assert.EqualValues(t, res.Comments, rows(t, db, &models.Comment{}))
	assert.EqualValues(t, res.Follows, rows(t, db, &models.Follow{}))
	assert.LessOrEqual(t, res.Comments, 25*3)
	assert.LessOrEqual(t, res.Follows, 6*3)
}

func TestRun_FollowsAreDistinctAndNeverSelf(t *testing.T) {
	db := testutil.NewDB(t)
	opts := smallOptions()
	opts.MaxFollowsPerUser = 5

	_, err := Run(context.Background(), db, opts)
	require.NoError(t, err)

	var follows []models.Follow
	require.NoError(t, db.Find(&follows).Error)
	seen := map[[2]uint]bool{}
	for _, f := range follows {
		assert.NotEqual(t, f.UserID, f.AuthorID)
		key := [2]uint{f.UserID, f.AuthorID}
		assert.False(t, seen[key], "duplicate follow %v", key)
		seen[key] = true
	}
}

func TestRun_PubDatesWithinWindow(t *testing.T) {
	db := testutil.NewDB(t)
	f, err := NewFactory(db, smallOptions())
	require.NoError(t, err)

	author := &models.User{ID: 1}
	for i := 0; i < 50; i++ {
		p := f.BuildPost(author, nil)
		assert.False(t, p.PubDate.After(f.now))
		assert.True(t, p.PubDate.After(f.now.AddDate(0, 0, -11)))
		assert.NotEmpty(t, p.Text)
		assert.Nil(t, p.GroupID)
	}
}

func TestRun_CleanReplacesExistingData(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "leftover")

	opts := smallOptions()
	opts.Clean = true
	_, err := Run(context.Background(), db, opts)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&n).Error)
	assert.Zero(t, n)
	assert.EqualValues(t, opts.Users, rows(t, db, &models.User{}))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	opts := smallOptions()
	opts.DryRun = true

	res, err := Run(context.Background(), db, opts)
	require.NoError(t, err)

	assert.Equal(t, 25, res.Posts)
	assert.Zero(t, rows(t, db, &models.User{}))
	assert.Zero(t, rows(t, db, &models.Post{}))
}

func TestRun_RequiresUsers(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := Run(context.Background(), db, Options{Posts: 3})
	assert.Error(t, err)
}

func TestNewFactory_HashesPassword(t *testing.T) {
	f, err := NewFactory(nil, Options{Seed: 1})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.password), []byte(DefaultPassword)))
}

func TestFactory_CreateUserProducesValidAccount(t *testing.T) {
	db := testutil.NewDB(t)
	f, err := NewFactory(db, smallOptions())
	require.NoError(t, err)

	u, err := f.CreateUser(7)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Regexp(t, `^[a-z0-9]+_7$`, u.Username)
	assert.Contains(t, u.Email, "@example.com")
}
