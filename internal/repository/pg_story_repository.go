package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talescapes-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ StoryRepository = (*pgStoryRepository)(nil)

const (
	insertStoryQuery = `
INSERT INTO stories (id, author_id, title, description, cover_image_url, status, featured, start_scene_id, scenes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getStoryQuery = `
SELECT id, author_id, title, description, cover_image_url, status, featured, start_scene_id, scenes, created_at, updated_at
FROM stories
WHERE id = $1`

	upsertStoryQuery = `
INSERT INTO stories (id, author_id, title, description, cover_image_url, status, featured, start_scene_id, scenes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    cover_image_url = EXCLUDED.cover_image_url,
    status = EXCLUDED.status,
    featured = EXCLUDED.featured,
    start_scene_id = EXCLUDED.start_scene_id,
    scenes = EXCLUDED.scenes,
    updated_at = EXCLUDED.updated_at`

	deleteStoryQuery = `DELETE FROM stories WHERE id = $1`

	summaryColumns = `id, author_id, title, description, cover_image_url, status, featured, jsonb_array_length(scenes) AS scene_count, created_at, updated_at`
)

var (
	listByAuthorQuery = fmt.Sprintf(`
SELECT %s FROM stories
WHERE author_id = $1
ORDER BY updated_at DESC`, summaryColumns)

	listPublishedQuery = fmt.Sprintf(`
SELECT %s FROM stories
WHERE status = 'published'
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2`, summaryColumns)

	listFeaturedQuery = fmt.Sprintf(`
SELECT %s FROM stories
WHERE status = 'published' AND featured = TRUE
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2`, summaryColumns)

	listAllQuery = fmt.Sprintf(`
SELECT %s FROM stories
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2`, summaryColumns)
)

type pgStoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgStoryRepository creates a new Postgres-backed StoryRepository.
func NewPgStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		pool:   pool,
		logger: logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now

	scenesJSON, err := json.Marshal(story.Scenes)
	if err != nil {
		return fmt.Errorf("failed to marshal scenes: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertStoryQuery,
		story.ID,
		story.AuthorID,
		story.Title,
		story.Description,
		story.CoverImageURL,
		story.Status,
		story.Featured,
		nullableUUID(story.StartSceneID),
		scenesJSON,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert story", zap.Stringer("storyID", story.ID), zap.Error(err))
		return fmt.Errorf("failed to insert story: %w", err)
	}
	r.logger.Debug("Story created", zap.Stringer("storyID", story.ID))
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	var scenesJSON []byte
	var startSceneID *uuid.UUID

	err := r.pool.QueryRow(ctx, getStoryQuery, id).Scan(
		&story.ID,
		&story.AuthorID,
		&story.Title,
		&story.Description,
		&story.CoverImageURL,
		&story.Status,
		&story.Featured,
		&startSceneID,
		&scenesJSON,
		&story.CreatedAt,
		&story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.Stringer("storyID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	if startSceneID != nil {
		story.StartSceneID = *startSceneID
	}
	if err := json.Unmarshal(scenesJSON, &story.Scenes); err != nil {
		r.logger.Error("Failed to unmarshal scenes", zap.Stringer("storyID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal scenes: %w", err)
	}
	return story, nil
}

func (r *pgStoryRepository) Update(ctx context.Context, story *models.Story) error {
	story.UpdatedAt = time.Now().UTC()

	scenesJSON, err := json.Marshal(story.Scenes)
	if err != nil {
		return fmt.Errorf("failed to marshal scenes: %w", err)
	}

	_, err = r.pool.Exec(ctx, upsertStoryQuery,
		story.ID,
		story.AuthorID,
		story.Title,
		story.Description,
		story.CoverImageURL,
		story.Status,
		story.Featured,
		nullableUUID(story.StartSceneID),
		scenesJSON,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert story", zap.Stringer("storyID", story.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert story: %w", err)
	}
	r.logger.Debug("Story saved", zap.Stringer("storyID", story.ID))
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.Stringer("storyID", id), zap.Error(err))
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.StorySummary, error) {
	var summaries []models.StorySummary
	if err := pgxscan.Select(ctx, r.pool, &summaries, listByAuthorQuery, authorID); err != nil {
		r.logger.Error("Failed to list stories by author", zap.Stringer("authorID", authorID), zap.Error(err))
		return nil, fmt.Errorf("failed to list stories by author: %w", err)
	}
	return summaries, nil
}

func (r *pgStoryRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return r.list(ctx, listPublishedQuery, limit, offset)
}

func (r *pgStoryRepository) ListFeatured(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return r.list(ctx, listFeaturedQuery, limit, offset)
}

func (r *pgStoryRepository) ListAll(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	return r.list(ctx, listAllQuery, limit, offset)
}

func (r *pgStoryRepository) list(ctx context.Context, query string, limit, offset int) ([]models.StorySummary, error) {
	var summaries []models.StorySummary
	if err := pgxscan.Select(ctx, r.pool, &summaries, query, limit, offset); err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return summaries, nil
}

// nullableUUID maps the zero UUID to NULL. A freshly created story has no
// start scene until its seed scene is appended.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
