package service

import (
	"context"
	"errors"
	"testing"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/storage"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// services wires every service over one in-memory database and blob area.
type services struct {
	db       *gorm.DB
	blobs    *storage.BlobStore
	feeds    *FeedService
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	profiles *ProfileService
	users    *UserService
	groups   *GroupService
	images   *ImageService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	blobs := storage.NewMemBlobStore()
	cfg := &config.Config{ImageMaxUploadSizeMB: 1, PageSize: 10}

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	images := NewImageService(blobs, cfg)

	users := NewUserService(userRepo)
	users.bcryptCost = bcrypt.MinCost

	return &services{
		db:       db,
		blobs:    blobs,
		feeds:    NewFeedService(postRepo, groupRepo, userRepo, cfg.PageSize),
		posts:    NewPostService(repository.NewTxManager(db), postRepo, groupRepo, userRepo, images),
		comments: NewCommentService(commentRepo, postRepo, userRepo),
		follows:  NewFollowService(followRepo, userRepo),
		profiles: NewProfileService(postRepo, followRepo, userRepo),
		users:    users,
		groups:   NewGroupService(groupRepo),
		images:   images,
	}
}

type failingTx struct{ err error }

func (f failingTx) WithinTransaction(context.Context, func(context.Context) error) error {
	return f.err
}

var errTxFailed = errors.New("tx failed")

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertCode(t, err, models.CodeValidation)
	assert.NotEmpty(t, appErr.FieldError(field), "expected error on %q, got %v", field, appErr.Fields)
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
	return n
}
