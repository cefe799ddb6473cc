package repository

import (
	"context"

	"talescapes-server/internal/models"

	"github.com/google/uuid"
)

// StoryRepository is the persistence collaborator for whole story documents.
// Save semantics are last-write-wins at the granularity of the full story;
// there is no merge protocol for concurrent authors.
type StoryRepository interface {
	// Create inserts a new story document.
	Create(ctx context.Context, story *models.Story) error
	// GetByID loads the full story document. Returns models.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	// Update upserts the full story document and stamps UpdatedAt.
	Update(ctx context.Context, story *models.Story) error
	// Delete removes the story document.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByAuthor returns summaries of the author's stories, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.StorySummary, error)
	// ListPublished returns summaries of publicly readable stories.
	ListPublished(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
	// ListFeatured returns summaries of published stories with the editorial flag set.
	ListFeatured(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
	// ListAll returns summaries of every story regardless of status (admin surface).
	ListAll(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
}

// SessionRepository stores reading-session snapshots keyed by reader and
// story. Snapshots expire; an abandoned session simply ages out.
type SessionRepository interface {
	// Get loads a snapshot. Returns models.ErrNotFound if absent or expired.
	Get(ctx context.Context, userID, storyID uuid.UUID) (*models.ReadingSessionState, error)
	// Save upserts a snapshot and refreshes its TTL.
	Save(ctx context.Context, state *models.ReadingSessionState) error
	// Delete drops a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, userID, storyID uuid.UUID) error
}
