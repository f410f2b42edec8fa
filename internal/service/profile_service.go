package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/repository"
)

// ProfileStats are the author counters shown on profile and post pages.
type ProfileStats struct {
	Author      *models.User
	PostsCount  int64
	Followers   int64
	Following   int64
	IsFollowing bool
}

type ProfileService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewProfileService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *ProfileService {
	return &ProfileService{postRepo: postRepo, followRepo: followRepo, userRepo: userRepo}
}

func (s *ProfileService) Profile(ctx context.Context, username string, caller *models.User) (*ProfileStats, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Stats(ctx, author, caller)
}

// Stats computes counters for author. IsFollowing is false for anonymous
// callers and for the author themselves.
func (s *ProfileService) Stats(ctx context.Context, author *models.User, caller *models.User) (*ProfileStats, error) {
	stats := &ProfileStats{Author: author}

	var err error
	if stats.PostsCount, err = s.postRepo.Count(ctx, repository.PostFilter{AuthorID: author.ID}); err != nil {
		return nil, err
	}
	if stats.Followers, err = s.followRepo.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if stats.Following, err = s.followRepo.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	if caller != nil && caller.ID != author.ID {
		if stats.IsFollowing, err = s.followRepo.Exists(ctx, caller.ID, author.ID); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
