package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus defines the lifecycle status of a story.
// Matches the 'story_status' ENUM in the database.
type StoryStatus string

const (
	StatusDraft     StoryStatus = "draft"     // Editable, not visible in the public catalog
	StatusPublished StoryStatus = "published" // Readable from the public catalog
)

// Story is the root document of a branching story: display metadata plus the
// scene graph. Scenes keep their insertion order for editor listings; the
// order carries no meaning for traversal.
type Story struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	AuthorID      uuid.UUID   `json:"author_id" db:"author_id"`
	Title         string      `json:"title" db:"title"`
	Description   string      `json:"description" db:"description"`
	CoverImageURL *string     `json:"cover_image_url,omitempty" db:"cover_image_url"`
	Status        StoryStatus `json:"status" db:"status"`
	Featured      bool        `json:"featured" db:"featured"`
	StartSceneID  uuid.UUID   `json:"start_scene_id" db:"start_scene_id"`
	Scenes        []Scene     `json:"scenes" db:"-"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Scene is a node in the story graph. Content is paragraph-delimited by
// newlines. Media URLs are opaque to the engine.
type Scene struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	ImageURL *string   `json:"image_url,omitempty"`
	AudioURL *string   `json:"audio_url,omitempty"`
	IsEnding bool      `json:"is_ending"`
	Choices  []Choice  `json:"choices"`
}

// Choice is a directed edge from its owning scene to NextSceneID.
// A nil NextSceneID is a dangling choice: legal while authoring, skipped
// during traversal.
type Choice struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	NextSceneID *uuid.UUID `json:"next_scene_id,omitempty"`
}

// FindScene returns the scene with the given id, or nil if absent.
func (s *Story) FindScene(sceneID uuid.UUID) *Scene {
	for i := range s.Scenes {
		if s.Scenes[i].ID == sceneID {
			return &s.Scenes[i]
		}
	}
	return nil
}

// FindChoice returns the choice with the given id, or nil if absent.
func (sc *Scene) FindChoice(choiceID uuid.UUID) *Choice {
	for i := range sc.Choices {
		if sc.Choices[i].ID == choiceID {
			return &sc.Choices[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the story. Edit operations work on clones so
// a rejected operation never leaves a half-mutated story behind.
func (s *Story) Clone() *Story {
	out := *s
	if s.CoverImageURL != nil {
		v := *s.CoverImageURL
		out.CoverImageURL = &v
	}
	out.Scenes = make([]Scene, len(s.Scenes))
	for i := range s.Scenes {
		out.Scenes[i] = *cloneScene(&s.Scenes[i])
	}
	return &out
}

func cloneScene(sc *Scene) *Scene {
	out := *sc
	if sc.ImageURL != nil {
		v := *sc.ImageURL
		out.ImageURL = &v
	}
	if sc.AudioURL != nil {
		v := *sc.AudioURL
		out.AudioURL = &v
	}
	out.Choices = make([]Choice, len(sc.Choices))
	for i, ch := range sc.Choices {
		out.Choices[i] = ch
		if ch.NextSceneID != nil {
			v := *ch.NextSceneID
			out.Choices[i].NextSceneID = &v
		}
	}
	return &out
}

// StorySummary provides a concise view of a story, used in lists.
type StorySummary struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	AuthorID      uuid.UUID   `json:"author_id" db:"author_id"`
	Title         string      `json:"title" db:"title"`
	Description   string      `json:"description" db:"description"`
	CoverImageURL *string     `json:"cover_image_url,omitempty" db:"cover_image_url"`
	Status        StoryStatus `json:"status" db:"status"`
	Featured      bool        `json:"featured" db:"featured"`
	SceneCount    int         `json:"scene_count" db:"scene_count"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}
