package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow subscribes caller to username's posts. Following yourself or
// following twice changes nothing.
func (s *FollowService) Follow(ctx context.Context, caller *models.User, username string) (*models.User, error) {
	if caller == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == caller.ID {
		return author, nil
	}

	created, err := s.followRepo.Create(ctx, caller.ID, author.ID)
	if err != nil {
		return nil, err
	}
	if created {
		observability.FollowEdges.WithLabelValues("follow").Inc()
	}
	return author, nil
}

// Unfollow removes the edge if there is one.
func (s *FollowService) Unfollow(ctx context.Context, caller *models.User, username string) (*models.User, error) {
	if caller == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	deleted, err := s.followRepo.Delete(ctx, caller.ID, author.ID)
	if err != nil {
		return nil, err
	}
	if deleted {
		observability.FollowEdges.WithLabelValues("unfollow").Inc()
	}
	return author, nil
}
