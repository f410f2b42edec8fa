package service

import (
	"context"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

type CreateCommentInput struct {
	Username string
	PostID   uint
	Text     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// CreateComment appends a comment by caller to the post Username/PostID.
func (s *CommentService) CreateComment(ctx context.Context, caller *models.User, in CreateCommentInput) (*models.Comment, error) {
	if caller == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	author, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByAuthorAndID(ctx, author.ID, in.PostID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewFieldError("text", msgFieldRequired)
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: caller.ID,
		Text:     text,
		Created:  s.now().UTC(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = *caller

	observability.CommentsCreated.Inc()
	return comment, nil
}

// ListComments returns the post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
