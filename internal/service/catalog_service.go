package service

import (
	"context"

	"talescapes-server/internal/models"
	"talescapes-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService exposes the public browsing surface: published and featured
// story lists plus the published story detail, and the admin-only full list.
type CatalogService interface {
	ListPublished(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
	ListFeatured(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
	GetPublishedStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
}

type catalogServiceImpl struct {
	storyRepo repository.StoryRepository
	logger    *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(storyRepo repository.StoryRepository, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		storyRepo: storyRepo,
		logger:    logger.Named("CatalogService"),
	}
}

func (s *catalogServiceImpl) ListPublished(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return s.storyRepo.ListPublished(ctx, limit, offset)
}

func (s *catalogServiceImpl) ListFeatured(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return s.storyRepo.ListFeatured(ctx, limit, offset)
}

// GetPublishedStory returns the story detail for the public catalog. Drafts
// are indistinguishable from missing stories here.
func (s *catalogServiceImpl) GetPublishedStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StatusPublished {
		return nil, models.ErrNotFound
	}
	return story, nil
}

func (s *catalogServiceImpl) ListAll(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return s.storyRepo.ListAll(ctx, limit, offset)
}
