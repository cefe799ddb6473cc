package mocks

import (
	"context"

	"talescapes-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}

func (m *StoryRepository) Update(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *StoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StoryRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.StorySummary, error) {
	args := m.Called(ctx, authorID)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

func (m *StoryRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	args := m.Called(ctx, limit, offset)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

func (m *StoryRepository) ListFeatured(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	args := m.Called(ctx, limit, offset)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

func (m *StoryRepository) ListAll(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	args := m.Called(ctx, limit, offset)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, userID, storyID uuid.UUID) (*models.ReadingSessionState, error) {
	args := m.Called(ctx, userID, storyID)
	state, _ := args.Get(0).(*models.ReadingSessionState)
	return state, args.Error(1)
}

func (m *SessionRepository) Save(ctx context.Context, state *models.ReadingSessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, userID, storyID uuid.UUID) error {
	args := m.Called(ctx, userID, storyID)
	return args.Error(0)
}
