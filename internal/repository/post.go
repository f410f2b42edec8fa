package repository

import (
	"context"
	"errors"

	"yatube/internal/models"
	"yatube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero fields are ignored; set fields combine with AND.
type PostFilter struct {
	AuthorID uint
	GroupID  uint
	// FollowerID keeps posts whose author is followed by this user.
	FollowerID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByAuthorAndID loads a post only if authorID wrote it.
	GetByAuthorAndID(ctx context.Context, authorID, id uint) (*models.Post, error)
	// List returns posts newest first (pub_date, then id) with author, group and comment count.
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// Update persists text, group and image. Author and pub_date are never written.
	Update(ctx context.Context, post *models.Post) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		log:     observability.NewRepoLogger("posts"),
		metrics: observability.NewDatabaseMetrics("posts"),
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return r.first(ctx, conn(ctx, r.db).Where("posts.id = ?", id), id)
}

func (r *postRepository) GetByAuthorAndID(ctx context.Context, authorID, id uint) (*models.Post, error) {
	return r.first(ctx, conn(ctx, r.db).Where("posts.id = ? AND posts.author_id = ?", id, authorID), id)
}

func (r *postRepository) first(_ context.Context, q *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(q).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, error) {
	defer r.metrics.TrackQuery("list")()

	var posts []models.Post
	q := applyPostFilter(conn(ctx, r.db).Model(&models.Post{}), filter)
	err := withDetails(q).
		Order("posts.pub_date DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	defer r.metrics.TrackQuery("count")()

	var total int64
	if err := applyPostFilter(conn(ctx, r.db).Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := conn(ctx, r.db).
		Model(post).
		Omit(clause.Associations).
		Select("Text", "GroupID", "Image").
		Updates(post).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": post.ID})
	return nil
}

// applyPostFilter adds the WHERE/JOIN clauses for the filter. The personalized
// feed is one JOIN on follows rather than a list of author ids.
func applyPostFilter(q *gorm.DB, f PostFilter) *gorm.DB {
	if f.FollowerID != 0 {
		q = q.Joins("JOIN follows ON follows.author_id = posts.author_id").
			Where("follows.user_id = ?", f.FollowerID)
	}
	if f.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.GroupID != 0 {
		q = q.Where("posts.group_id = ?", f.GroupID)
	}
	return q
}

// withDetails selects the comment count and preloads author and group.
func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count").
		Preload("Author").
		Preload("Group")
}
