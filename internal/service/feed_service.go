package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

// ScopeKind selects which posts a feed shows.
type ScopeKind string

const (
	ScopeGlobal    ScopeKind = "global"
	ScopeGroup     ScopeKind = "group"
	ScopeAuthor    ScopeKind = "author"
	ScopeFollowing ScopeKind = "following"
)

// FeedScope is a feed selector. Slug is read for ScopeGroup, Username for ScopeAuthor.
type FeedScope struct {
	Kind     ScopeKind
	Slug     string
	Username string
}

func GlobalScope() FeedScope { return FeedScope{Kind: ScopeGlobal} }
func GroupScope(slug string) FeedScope { return FeedScope{Kind: ScopeGroup, Slug: slug} }
func AuthorScope(username string) FeedScope { return FeedScope{Kind: ScopeAuthor, Username: username} }
func FollowingScope() FeedScope { return FeedScope{Kind: ScopeFollowing} }

// FeedPage is one page of a feed. Group and Author are set for their scopes.
type FeedPage struct {
	Posts  []models.Post
	Page   Page
	Group  *models.Group
	Author *models.User
}

type FeedService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	pageSize  int
}

func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	pageSize int,
) *FeedService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		pageSize:  pageSize,
	}
}

// Feed returns page number of the scoped listing, newest first.
func (s *FeedService) Feed(ctx context.Context, scope FeedScope, number int, caller *models.User) (_ *FeedPage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "feed",
		observability.AttrFeedScope.String(string(scope.Kind)),
		observability.AttrFeedPage.Int(number),
	)
	defer func() { observability.EndSpan(span, err) }()

	out := &FeedPage{}
	var filter repository.PostFilter

	switch scope.Kind {
	case ScopeGlobal, "":
	case ScopeGroup:
		group, err := s.groupRepo.GetBySlug(ctx, scope.Slug)
		if err != nil {
			return nil, err
		}
		out.Group = group
		filter.GroupID = group.ID
		span.SetAttributes(observability.AttrGroupSlug.String(group.Slug))
	case ScopeAuthor:
		author, err := s.userRepo.GetByUsername(ctx, scope.Username)
		if err != nil {
			return nil, err
		}
		out.Author = author
		filter.AuthorID = author.ID
		span.SetAttributes(observability.AttrUsername.String(author.Username))
	case ScopeFollowing:
		if caller == nil {
			return nil, models.NewUnauthorizedError("Authentication required")
		}
		filter.FollowerID = caller.ID
		span.SetAttributes(observability.UserID(caller.ID))
	default:
		return nil, models.NewValidationError("Unknown feed scope")
	}

	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	out.Page = NewPage(total, number, s.pageSize)
	if total == 0 {
		out.Posts = []models.Post{}
		return out, nil
	}

	posts, err := s.postRepo.List(ctx, filter, out.Page.Size, out.Page.Offset())
	if err != nil {
		return nil, err
	}
	out.Posts = posts
	return out, nil
}
