package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

const (
	msgFieldRequired = "This field is required."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgFormInvalid   = "Please correct the errors below."
)

type PostService struct {
	tx        repository.TxManager
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	images    *ImageService
	now       func() time.Time
}

type CreatePostInput struct {
	Text    string
	GroupID *uint
	// Image is the raw upload; nil means no attachment.
	Image []byte
}

type UpdatePostInput struct {
	Username string
	PostID   uint
	Text     string
	GroupID  *uint
	// Image replaces the attachment when non-nil.
	Image []byte
	// ClearImage drops the attachment when no new image is uploaded.
	ClearImage bool
}

func NewPostService(
	tx repository.TxManager,
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	images *ImageService,
) *PostService {
	return &PostService{
		tx:        tx,
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		images:    images,
		now:       time.Now,
	}
}

// GetPost loads a post with its author, group and comment count. The post
// must belong to username.
func (s *PostService) GetPost(ctx context.Context, username string, postID uint) (*models.Post, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByAuthorAndID(ctx, author.ID, postID)
}

func (s *PostService) CreatePost(ctx context.Context, caller *models.User, in CreatePostInput) (_ *models.Post, err error) {
	if caller == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	ctx, span := observability.StartServiceSpan(ctx, "post.create", observability.UserID(caller.ID))
	defer func() { observability.EndSpan(span, err) }()

	text, img, err := s.validate(ctx, caller, in.Text, in.GroupID, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		PubDate:  s.now().UTC(),
		AuthorID: caller.ID,
		GroupID:  in.GroupID,
	}
	if img != nil {
		post.Image = &img.Key
	}

	if err := s.persist(ctx, img, func(ctx context.Context) error {
		return s.postRepo.Create(ctx, post)
	}); err != nil {
		return nil, err
	}

	observability.PostsCreated.Inc()
	return post, nil
}

// UpdatePost edits text, group and image. A caller other than the author
// gets a FORBIDDEN error and nothing changes.
func (s *PostService) UpdatePost(ctx context.Context, caller *models.User, in UpdatePostInput) (_ *models.Post, err error) {
	if caller == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	ctx, span := observability.StartServiceSpan(ctx, "post.update",
		observability.UserID(caller.ID),
		observability.PostID(in.PostID),
	)
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.GetPost(ctx, in.Username, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != caller.ID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	text, img, err := s.validate(ctx, caller, in.Text, in.GroupID, in.Image)
	if err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = in.GroupID
	switch {
	case img != nil:
		post.Image = &img.Key
	case in.ClearImage:
		post.Image = nil
	}

	if err := s.persist(ctx, img, func(ctx context.Context) error {
		return s.postRepo.Update(ctx, post)
	}); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// validate checks the post form and collects every field error at once.
func (s *PostService) validate(ctx context.Context, caller *models.User, rawText string, groupID *uint, image []byte) (string, *ProcessedImage, error) {
	formErr := models.NewValidationError(msgFormInvalid)

	text := strings.TrimSpace(rawText)
	if text == "" {
		formErr.WithField("text", msgFieldRequired)
	}

	if groupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if !models.IsNotFound(err) {
				return "", nil, err
			}
			formErr.WithField("group", msgInvalidChoice)
		}
	}

	var img *ProcessedImage
	if image != nil {
		processed, err := s.images.Process(ctx, UploadImageInput{AuthorID: caller.ID, Content: image})
		if err != nil {
			if models.ErrorCode(err) != models.CodeValidation {
				return "", nil, err
			}
			formErr.WithField("image", formErrorMessage(err, "image"))
		}
		img = processed
	}

	if len(formErr.Fields) > 0 {
		return "", nil, formErr
	}
	return text, img, nil
}

// persist stores img, then runs write in a transaction. A blob written here is
// removed again if the transaction fails.
func (s *PostService) persist(ctx context.Context, img *ProcessedImage, write func(ctx context.Context) error) error {
	created := false
	if img != nil {
		var err error
		if created, err = s.images.Store(img); err != nil {
			return err
		}
	}

	if err := s.tx.WithinTransaction(ctx, write); err != nil {
		if created {
			s.images.Remove(img)
		}
		return err
	}
	return nil
}

func formErrorMessage(err error, field string) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if msg := appErr.FieldError(field); msg != "" {
			return msg
		}
		return appErr.Message
	}
	return err.Error()
}
