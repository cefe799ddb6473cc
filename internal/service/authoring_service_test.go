package service_test

import (
	"context"
	"errors"
	"testing"

	"talescapes-server/internal/engine"
	"talescapes-server/internal/messaging"
	messagingmocks "talescapes-server/internal/messaging/mocks"
	"talescapes-server/internal/models"
	repomocks "talescapes-server/internal/repository/mocks"
	"talescapes-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthoringFixture(t *testing.T) (service.AuthoringService, *repomocks.StoryRepository, *messagingmocks.StoryEventPublisher) {
	t.Helper()
	storyRepo := new(repomocks.StoryRepository)
	publisher := new(messagingmocks.StoryEventPublisher)
	svc := service.NewAuthoringService(storyRepo, publisher, zap.NewNop())
	return svc, storyRepo, publisher
}

// ownedStory builds a valid two-scene draft owned by authorID.
func ownedStory(authorID uuid.UUID) *models.Story {
	s1, s2 := uuid.New(), uuid.New()
	to2 := s2
	return &models.Story{
		ID:           uuid.New(),
		AuthorID:     authorID,
		Title:        "Draft",
		Status:       models.StatusDraft,
		StartSceneID: s1,
		Scenes: []models.Scene{
			{ID: s1, Title: "Scene 1", Choices: []models.Choice{{ID: uuid.New(), Text: "go", NextSceneID: &to2}}},
			{ID: s2, Title: "Scene 2", IsEnding: true, Choices: []models.Choice{}},
		},
	}
}

func TestAuthoringService_CreateStory(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()

	storyRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Story")).Return(nil).Once()

	story, err := svc.CreateStory(context.Background(), authorID, "My Story", "A tale")

	require.NoError(t, err)
	assert.Equal(t, authorID, story.AuthorID)
	assert.Equal(t, models.StatusDraft, story.Status)
	// The seed scene is created immediately and becomes the start scene.
	require.Len(t, story.Scenes, 1)
	assert.Equal(t, story.Scenes[0].ID, story.StartSceneID)
	storyRepo.AssertExpectations(t)
}

func TestAuthoringService_Ownership(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	story := ownedStory(uuid.New())
	stranger := uuid.New()

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil)

	_, err := svc.GetStory(context.Background(), story.ID, stranger)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.DeleteScene(context.Background(), story.ID, stranger, story.Scenes[1].ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	err = svc.DeleteStory(context.Background(), story.ID, stranger)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// No writes reached the repository.
	storyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	storyRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAuthoringService_EditSavesOnlyOnSuccess(t *testing.T) {
	t.Run("Successful edit saves the mutated story", func(t *testing.T) {
		svc, storyRepo, _ := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)
		target := story.Scenes[1].ID

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", mock.Anything, mock.MatchedBy(func(saved *models.Story) bool {
			return saved.StartSceneID == target
		})).Return(nil).Once()

		updated, err := svc.SetStartScene(context.Background(), story.ID, authorID, target)

		require.NoError(t, err)
		assert.Equal(t, target, updated.StartSceneID)
		storyRepo.AssertExpectations(t)
	})

	t.Run("Rejected edit propagates the engine error and saves nothing", func(t *testing.T) {
		svc, storyRepo, _ := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.DeleteScene(context.Background(), story.ID, authorID, story.StartSceneID)

		assert.ErrorIs(t, err, models.ErrIsStartScene)
		storyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Save failure surfaces as a wrapped error", func(t *testing.T) {
		svc, storyRepo, _ := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := svc.ToggleEnding(context.Background(), story.ID, authorID, story.Scenes[0].ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save story")
	})
}

func TestAuthoringService_AddScene(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
	storyRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Story")).Return(nil).Once()

	updated, sceneID, err := svc.AddScene(context.Background(), story.ID, authorID)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sceneID)
	assert.NotNil(t, updated.FindScene(sceneID))
	assert.Len(t, updated.Scenes, 3)
	storyRepo.AssertExpectations(t)
}

func TestAuthoringService_AddChoice(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)

	t.Run("Unknown scene is rejected without a save", func(t *testing.T) {
		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, _, err := svc.AddChoice(context.Background(), story.ID, authorID, uuid.New())

		assert.ErrorIs(t, err, models.ErrUnknownScene)
		storyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthoringService_Publish(t *testing.T) {
	t.Run("Publishes a valid story and emits an event", func(t *testing.T) {
		svc, storyRepo, publisher := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", mock.Anything, mock.MatchedBy(func(saved *models.Story) bool {
			return saved.Status == models.StatusPublished
		})).Return(nil).Once()
		publisher.On("PublishStoryEvent", mock.Anything, mock.MatchedBy(func(event messaging.StoryEvent) bool {
			return event.Type == messaging.EventStoryPublished && event.StoryID == story.ID
		})).Return(nil).Once()

		published, err := svc.Publish(context.Background(), story.ID, authorID)

		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, published.Status)
		storyRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Rejects a structurally invalid story", func(t *testing.T) {
		svc, storyRepo, publisher := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)
		story.StartSceneID = uuid.New()

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.Publish(context.Background(), story.ID, authorID)

		assert.ErrorIs(t, err, models.ErrStoryInvalid)
		storyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "PublishStoryEvent", mock.Anything, mock.Anything)
	})

	t.Run("Broker failure does not fail the publish", func(t *testing.T) {
		svc, storyRepo, publisher := newAuthoringFixture(t)
		authorID := uuid.New()
		story := ownedStory(authorID)

		storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		publisher.On("PublishStoryEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		published, err := svc.Publish(context.Background(), story.ID, authorID)

		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, published.Status)
	})
}

func TestAuthoringService_Unpublish(t *testing.T) {
	svc, storyRepo, publisher := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)
	story.Status = models.StatusPublished
	story.Featured = true

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
	storyRepo.On("Update", mock.Anything, mock.MatchedBy(func(saved *models.Story) bool {
		return saved.Status == models.StatusDraft && !saved.Featured
	})).Return(nil).Once()
	publisher.On("PublishStoryEvent", mock.Anything, mock.MatchedBy(func(event messaging.StoryEvent) bool {
		return event.Type == messaging.EventStoryUnpublished
	})).Return(nil).Once()

	unpublished, err := svc.Unpublish(context.Background(), story.ID, authorID)

	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, unpublished.Status)
	assert.False(t, unpublished.Featured)
	storyRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestAuthoringService_SetFeatured(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	story := ownedStory(uuid.New())
	story.Status = models.StatusPublished

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
	storyRepo.On("Update", mock.Anything, mock.MatchedBy(func(saved *models.Story) bool {
		return saved.Featured
	})).Return(nil).Once()

	featured, err := svc.SetFeatured(context.Background(), story.ID, true)

	require.NoError(t, err)
	assert.True(t, featured.Featured)
	storyRepo.AssertExpectations(t)
}

func TestAuthoringService_ValidateStory(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)
	story.Scenes = nil

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

	violations, err := svc.ValidateStory(context.Background(), story.ID, authorID)

	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationEmptyScenes, violations[0].Code)
}

func TestAuthoringService_UpdateMetadata(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
	storyRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	newTitle := "Renamed"
	cover := ""
	updated, err := svc.UpdateMetadata(context.Background(), story.ID, authorID, service.MetadataUpdate{
		Title:         &newTitle,
		CoverImageURL: &cover,
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Nil(t, updated.CoverImageURL)
	// Description was nil in the update and stays untouched.
	assert.Equal(t, story.Description, updated.Description)
}

func TestAuthoringService_UpdateSceneField(t *testing.T) {
	svc, storyRepo, _ := newAuthoringFixture(t)
	authorID := uuid.New()
	story := ownedStory(authorID)
	sceneID := story.Scenes[0].ID

	storyRepo.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
	storyRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := svc.UpdateSceneField(context.Background(), story.ID, authorID, sceneID, engine.FieldContent, "New text")

	require.NoError(t, err)
	assert.Equal(t, "New text", updated.FindScene(sceneID).Content)
}
