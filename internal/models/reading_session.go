package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingSessionState is the persisted snapshot of a reader's walk through a
// published story. The history stack holds visited scene ids, oldest first;
// the last entry is always the current scene.
type ReadingSessionState struct {
	UserID         uuid.UUID   `json:"user_id"`
	StoryID        uuid.UUID   `json:"story_id"`
	CurrentSceneID uuid.UUID   `json:"current_scene_id"`
	History        []uuid.UUID `json:"history"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
