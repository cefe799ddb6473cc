package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Story lifecycle event types.
const (
	EventStoryPublished   = "story.published"
	EventStoryUnpublished = "story.unpublished"
)

// StoryEvent is the payload published to the story events queue whenever a
// story changes visibility. Consumed by the notification pipeline.
type StoryEvent struct {
	Type       string    `json:"type"`
	StoryID    uuid.UUID `json:"story_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}
