package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talescapes-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ SessionRepository = (*redisSessionRepository)(nil)

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository creates a Redis-backed SessionRepository.
// Snapshots live under reading_session:{userID}:{storyID} with the given TTL.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionRepo"),
	}
}

func sessionKey(userID, storyID uuid.UUID) string {
	return fmt.Sprintf("reading_session:%s:%s", userID, storyID)
}

func (r *redisSessionRepository) Get(ctx context.Context, userID, storyID uuid.UUID) (*models.ReadingSessionState, error) {
	key := sessionKey(userID, storyID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get session from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	state := &models.ReadingSessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		r.logger.Error("Failed to unmarshal session state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return state, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, state *models.ReadingSessionState) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	key := sessionKey(state.UserID, state.StoryID)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session to redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	r.logger.Debug("Session snapshot saved",
		zap.Stringer("userID", state.UserID),
		zap.Stringer("storyID", state.StoryID),
		zap.Int("historyLen", len(state.History)),
	)
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, userID, storyID uuid.UUID) error {
	key := sessionKey(userID, storyID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete session from redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
