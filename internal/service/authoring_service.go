package service

import (
	"context"
	"fmt"
	"time"

	"talescapes-server/internal/engine"
	"talescapes-server/internal/messaging"
	"talescapes-server/internal/models"
	"talescapes-server/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var storiesPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "talescapes_stories_published_total",
	Help: "Number of stories published since process start.",
})

// MetadataUpdate carries the editable display metadata of a story. Nil
// fields are left unchanged.
type MetadataUpdate struct {
	Title         *string
	Description   *string
	CoverImageURL *string
}

// AuthoringService defines the business logic for creating and editing
// stories. Every graph mutation goes through the engine; the service owns
// ownership checks and persistence. Edit rejections propagate the engine's
// sentinel errors unchanged and never save a partial mutation.
type AuthoringService interface {
	CreateStory(ctx context.Context, authorID uuid.UUID, title, description string) (*models.Story, error)
	GetStory(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error)
	ListMyStories(ctx context.Context, authorID uuid.UUID) ([]models.StorySummary, error)
	UpdateMetadata(ctx context.Context, storyID, authorID uuid.UUID, update MetadataUpdate) (*models.Story, error)
	DeleteStory(ctx context.Context, storyID, authorID uuid.UUID) error

	AddScene(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, uuid.UUID, error)
	DeleteScene(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error)
	SetStartScene(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error)
	ToggleEnding(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error)
	UpdateSceneField(ctx context.Context, storyID, authorID, sceneID uuid.UUID, field engine.SceneField, value string) (*models.Story, error)
	AddChoice(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, uuid.UUID, error)
	UpdateChoice(ctx context.Context, storyID, authorID, sceneID, choiceID uuid.UUID, text string, nextSceneID *uuid.UUID) (*models.Story, error)
	DeleteChoice(ctx context.Context, storyID, authorID, sceneID, choiceID uuid.UUID) (*models.Story, error)

	ValidateStory(ctx context.Context, storyID, authorID uuid.UUID) ([]models.Violation, error)
	Publish(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error)
	Unpublish(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error)
	SetFeatured(ctx context.Context, storyID uuid.UUID, featured bool) (*models.Story, error)
}

type authoringServiceImpl struct {
	storyRepo repository.StoryRepository
	publisher messaging.StoryEventPublisher
	logger    *zap.Logger
}

// NewAuthoringService creates a new AuthoringService.
func NewAuthoringService(storyRepo repository.StoryRepository, publisher messaging.StoryEventPublisher, logger *zap.Logger) AuthoringService {
	return &authoringServiceImpl{
		storyRepo: storyRepo,
		publisher: publisher,
		logger:    logger.Named("AuthoringService"),
	}
}

// CreateStory creates a draft with a single seed scene, which becomes the
// start scene. A story never exists without at least one scene.
func (s *authoringServiceImpl) CreateStory(ctx context.Context, authorID uuid.UUID, title, description string) (*models.Story, error) {
	story := &models.Story{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		Status:      models.StatusDraft,
		Scenes:      []models.Scene{},
	}
	engine.AddScene(story)

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	s.logger.Info("Story created", zap.Stringer("storyID", story.ID), zap.Stringer("authorID", authorID))
	return story, nil
}

func (s *authoringServiceImpl) GetStory(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error) {
	return s.loadOwned(ctx, storyID, authorID)
}

func (s *authoringServiceImpl) ListMyStories(ctx context.Context, authorID uuid.UUID) ([]models.StorySummary, error) {
	return s.storyRepo.ListByAuthor(ctx, authorID)
}

func (s *authoringServiceImpl) UpdateMetadata(ctx context.Context, storyID, authorID uuid.UUID, update MetadataUpdate) (*models.Story, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		story.Title = *update.Title
	}
	if update.Description != nil {
		story.Description = *update.Description
	}
	if update.CoverImageURL != nil {
		story.CoverImageURL = optionalString(*update.CoverImageURL)
	}
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to save story metadata: %w", err)
	}
	return story, nil
}

func (s *authoringServiceImpl) DeleteStory(ctx context.Context, storyID, authorID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, storyID, authorID); err != nil {
		return err
	}
	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	s.logger.Info("Story deleted", zap.Stringer("storyID", storyID), zap.Stringer("authorID", authorID))
	return nil
}

func (s *authoringServiceImpl) AddScene(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, uuid.UUID, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	scene := engine.AddScene(story)
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to save story: %w", err)
	}
	return story, scene.ID, nil
}

func (s *authoringServiceImpl) DeleteScene(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		return engine.DeleteScene(story, sceneID)
	})
}

func (s *authoringServiceImpl) SetStartScene(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		return engine.SetStartScene(story, sceneID)
	})
}

func (s *authoringServiceImpl) ToggleEnding(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		return engine.ToggleEnding(story, sceneID)
	})
}

func (s *authoringServiceImpl) UpdateSceneField(ctx context.Context, storyID, authorID, sceneID uuid.UUID, field engine.SceneField, value string) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		engine.UpdateSceneField(story, sceneID, field, value)
		return nil
	})
}

func (s *authoringServiceImpl) AddChoice(ctx context.Context, storyID, authorID, sceneID uuid.UUID) (*models.Story, uuid.UUID, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	choice, err := engine.AddChoice(story, sceneID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to save story: %w", err)
	}
	return story, choice.ID, nil
}

func (s *authoringServiceImpl) UpdateChoice(ctx context.Context, storyID, authorID, sceneID, choiceID uuid.UUID, text string, nextSceneID *uuid.UUID) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		return engine.UpdateChoice(story, sceneID, choiceID, text, nextSceneID)
	})
}

func (s *authoringServiceImpl) DeleteChoice(ctx context.Context, storyID, authorID, sceneID, choiceID uuid.UUID) (*models.Story, error) {
	return s.edit(ctx, storyID, authorID, func(story *models.Story) error {
		return engine.DeleteChoice(story, sceneID, choiceID)
	})
}

func (s *authoringServiceImpl) ValidateStory(ctx context.Context, storyID, authorID uuid.UUID) ([]models.Violation, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, err
	}
	return story.Validate(), nil
}

// Publish makes the story publicly readable. A story that fails structural
// validation stays editable but cannot enter the reading surface.
func (s *authoringServiceImpl) Publish(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, err
	}
	if violations := story.Validate(); len(violations) > 0 {
		s.logger.Warn("Publish rejected: story failed validation",
			zap.Stringer("storyID", storyID),
			zap.Int("violations", len(violations)),
		)
		return nil, models.ErrStoryInvalid
	}
	story.Status = models.StatusPublished
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	storiesPublishedTotal.Inc()

	s.emitEvent(ctx, messaging.EventStoryPublished, story)
	s.logger.Info("Story published", zap.Stringer("storyID", storyID))
	return story, nil
}

func (s *authoringServiceImpl) Unpublish(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, err
	}
	story.Status = models.StatusDraft
	story.Featured = false
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}

	s.emitEvent(ctx, messaging.EventStoryUnpublished, story)
	s.logger.Info("Story unpublished", zap.Stringer("storyID", storyID))
	return story, nil
}

// SetFeatured toggles the editorial flag. Admin-only surface, so there is no
// ownership check here; the handler enforces the role.
func (s *authoringServiceImpl) SetFeatured(ctx context.Context, storyID uuid.UUID, featured bool) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	story.Featured = featured
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	return story, nil
}

// edit runs a single engine operation against a clone of the loaded story
// and saves only on success. A rejected operation returns the engine error
// as-is and touches nothing.
func (s *authoringServiceImpl) edit(ctx context.Context, storyID, authorID uuid.UUID, op func(*models.Story) error) (*models.Story, error) {
	story, err := s.loadOwned(ctx, storyID, authorID)
	if err != nil {
		return nil, err
	}
	updated := story.Clone()
	if err := op(updated); err != nil {
		return nil, err
	}
	if err := s.storyRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	return updated, nil
}

func (s *authoringServiceImpl) loadOwned(ctx context.Context, storyID, authorID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != authorID {
		return nil, models.ErrForbidden
	}
	return story, nil
}

// emitEvent publishes a lifecycle event. Event delivery is best-effort: a
// broker failure must not roll back a committed status change.
func (s *authoringServiceImpl) emitEvent(ctx context.Context, eventType string, story *models.Story) {
	if s.publisher == nil {
		return
	}
	event := messaging.StoryEvent{
		Type:       eventType,
		StoryID:    story.ID,
		AuthorID:   story.AuthorID,
		Title:      story.Title,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishStoryEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish story event",
			zap.String("type", eventType),
			zap.Stringer("storyID", story.ID),
			zap.Error(err),
		)
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
