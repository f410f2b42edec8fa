package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

// GroupService manages groups on behalf of administrators. Site users only read them.
type GroupService struct {
	groupRepo repository.GroupRepository
}

type SaveGroupInput struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

// SaveGroup creates the group or, if the slug exists, replaces its title and description.
func (s *GroupService) SaveGroup(ctx context.Context, in SaveGroupInput) (*models.Group, error) {
	group := &models.Group{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
	}
	if err := validation.ValidateGroupSlug(group.Slug); err != nil {
		return nil, models.NewFieldError("slug", err.Error())
	}
	if err := validation.ValidateGroupTitle(group.Title); err != nil {
		return nil, models.NewFieldError("title", err.Error())
	}
	if err := s.groupRepo.Upsert(ctx, group); err != nil {
		return nil, err
	}
	return s.groupRepo.GetBySlug(ctx, group.Slug)
}

// DeleteGroup removes the group. Its posts stay, without a group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	return s.groupRepo.DeleteBySlug(ctx, slug)
}
