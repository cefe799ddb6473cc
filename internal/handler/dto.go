package handler

import (
	"time"

	"talescapes-server/internal/models"

	"github.com/google/uuid"
)

// CreateStoryRequest is the body for creating a new draft.
type CreateStoryRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateMetadataRequest carries partial display-metadata updates. Absent
// fields are left unchanged.
type UpdateMetadataRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
}

// UpdateSceneFieldRequest applies one editable scene attribute.
type UpdateSceneFieldRequest struct {
	Field string `json:"field" binding:"required,oneof=title content image audio"`
	Value string `json:"value"`
}

// SetStartSceneRequest designates a new start scene.
type SetStartSceneRequest struct {
	SceneID uuid.UUID `json:"scene_id" binding:"required"`
}

// UpdateChoiceRequest replaces a choice's text and target atomically.
// NextSceneID may be null: the choice becomes dangling.
type UpdateChoiceRequest struct {
	Text        string     `json:"text" binding:"required,max=500"`
	NextSceneID *uuid.UUID `json:"next_scene_id"`
}

// SetFeaturedRequest toggles the editorial flag.
type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

// ChooseRequest selects a choice on the current scene.
type ChooseRequest struct {
	ChoiceID uuid.UUID `json:"choice_id" binding:"required"`
}

// StoryResponse is the full story document returned to its author.
type StoryResponse struct {
	ID            uuid.UUID          `json:"id"`
	AuthorID      uuid.UUID          `json:"author_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	CoverImageURL *string            `json:"cover_image_url,omitempty"`
	Status        models.StoryStatus `json:"status"`
	Featured      bool               `json:"featured"`
	StartSceneID  uuid.UUID          `json:"start_scene_id"`
	Scenes        []models.Scene     `json:"scenes"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SceneCreatedResponse returns the updated story plus the id of the scene
// just added.
type SceneCreatedResponse struct {
	SceneID uuid.UUID     `json:"scene_id"`
	Story   StoryResponse `json:"story"`
}

// ChoiceCreatedResponse returns the updated story plus the id of the choice
// just added.
type ChoiceCreatedResponse struct {
	ChoiceID uuid.UUID     `json:"choice_id"`
	Story    StoryResponse `json:"story"`
}

// ValidationResponse lists the structural violations found in a story.
type ValidationResponse struct {
	Valid      bool               `json:"valid"`
	Violations []models.Violation `json:"violations"`
}

func toStoryResponse(story *models.Story) StoryResponse {
	return StoryResponse{
		ID:            story.ID,
		AuthorID:      story.AuthorID,
		Title:         story.Title,
		Description:   story.Description,
		CoverImageURL: story.CoverImageURL,
		Status:        story.Status,
		Featured:      story.Featured,
		StartSceneID:  story.StartSceneID,
		Scenes:        story.Scenes,
		CreatedAt:     story.CreatedAt,
		UpdatedAt:     story.UpdatedAt,
	}
}
