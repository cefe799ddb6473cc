package service

import (
	"context"
	"errors"
	"fmt"

	"talescapes-server/internal/engine"
	"talescapes-server/internal/models"
	"talescapes-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingState is the view of a reading session returned to the client after
// every transition.
type ReadingState struct {
	StoryID      uuid.UUID     `json:"story_id"`
	StoryTitle   string        `json:"story_title"`
	Scene        *models.Scene `json:"scene"`
	Progress     float64       `json:"progress"`
	CanGoBack    bool          `json:"can_go_back"`
	Ended        bool          `json:"ended"`
	HistoryDepth int           `json:"history_depth"`
}

// ReadingService drives reading sessions: it loads the story, rebuilds the
// engine session from the persisted snapshot, applies one transition and
// persists the result. Transitions never fail on bad input; a choice that
// resolves nowhere simply does nothing.
type ReadingService interface {
	StartSession(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error)
	GetState(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error)
	Choose(ctx context.Context, userID, storyID, choiceID uuid.UUID) (*ReadingState, error)
	GoBack(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error)
	Restart(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error)
	EndSession(ctx context.Context, userID, storyID uuid.UUID) error
}

type readingServiceImpl struct {
	storyRepo   repository.StoryRepository
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

// NewReadingService creates a new ReadingService.
func NewReadingService(storyRepo repository.StoryRepository, sessionRepo repository.SessionRepository, logger *zap.Logger) ReadingService {
	return &readingServiceImpl{
		storyRepo:   storyRepo,
		sessionRepo: sessionRepo,
		logger:      logger.Named("ReadingService"),
	}
}

// StartSession opens (or resumes) a session on a readable story. An existing
// snapshot is resumed; a snapshot invalidated by later edits falls back to a
// fresh session at the start scene.
func (s *readingServiceImpl) StartSession(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error) {
	story, err := s.loadReadable(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	session, err := s.restoreOrStart(ctx, userID, story)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, story, session)
}

func (s *readingServiceImpl) GetState(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error) {
	story, err := s.loadReadable(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}
	session, err := s.restore(ctx, userID, story)
	if err != nil {
		return nil, err
	}
	return stateView(story, session), nil
}

func (s *readingServiceImpl) Choose(ctx context.Context, userID, storyID, choiceID uuid.UUID) (*ReadingState, error) {
	return s.transition(ctx, userID, storyID, func(session *engine.Session) {
		if !session.Choose(choiceID) {
			s.logger.Debug("Choice did not resolve, session unchanged",
				zap.Stringer("storyID", storyID),
				zap.Stringer("choiceID", choiceID),
			)
		}
	})
}

func (s *readingServiceImpl) GoBack(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error) {
	return s.transition(ctx, userID, storyID, func(session *engine.Session) {
		session.GoBack()
	})
}

func (s *readingServiceImpl) Restart(ctx context.Context, userID, storyID uuid.UUID) (*ReadingState, error) {
	return s.transition(ctx, userID, storyID, func(session *engine.Session) {
		session.Restart()
	})
}

func (s *readingServiceImpl) EndSession(ctx context.Context, userID, storyID uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, userID, storyID)
}

func (s *readingServiceImpl) transition(ctx context.Context, userID, storyID uuid.UUID, apply func(*engine.Session)) (*ReadingState, error) {
	story, err := s.loadReadable(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}
	session, err := s.restore(ctx, userID, story)
	if err != nil {
		return nil, err
	}
	apply(session)
	return s.persist(ctx, userID, story, session)
}

// restore rebuilds the engine session from the stored snapshot. There must
// be an active session; callers without one get models.ErrNotFound.
func (s *readingServiceImpl) restore(ctx context.Context, userID uuid.UUID, story *models.Story) (*engine.Session, error) {
	snapshot, err := s.sessionRepo.Get(ctx, userID, story.ID)
	if err != nil {
		return nil, err
	}
	session, err := engine.ResumeSession(story, snapshot.CurrentSceneID, snapshot.History)
	if err == nil {
		return session, nil
	}
	// The story was edited underneath the snapshot. Restart from the top
	// rather than failing the reader.
	s.logger.Info("Stale session snapshot, restarting from start scene",
		zap.Stringer("userID", userID),
		zap.Stringer("storyID", story.ID),
	)
	return engine.NewSession(story)
}

func (s *readingServiceImpl) restoreOrStart(ctx context.Context, userID uuid.UUID, story *models.Story) (*engine.Session, error) {
	session, err := s.restore(ctx, userID, story)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return engine.NewSession(story)
}

func (s *readingServiceImpl) persist(ctx context.Context, userID uuid.UUID, story *models.Story, session *engine.Session) (*ReadingState, error) {
	if err := s.sessionRepo.Save(ctx, session.State(userID, story.ID)); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return stateView(story, session), nil
}

// loadReadable loads a story a reader is allowed to walk: published, or the
// reader's own draft (authors preview their work before publishing).
func (s *readingServiceImpl) loadReadable(ctx context.Context, userID, storyID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StatusPublished && story.AuthorID != userID {
		return nil, ErrStoryNotReadable
	}
	return story, nil
}

func stateView(story *models.Story, session *engine.Session) *ReadingState {
	return &ReadingState{
		StoryID:      story.ID,
		StoryTitle:   story.Title,
		Scene:        session.CurrentScene(),
		Progress:     session.Progress(),
		CanGoBack:    len(session.History()) > 1,
		Ended:        session.Ended(),
		HistoryDepth: len(session.History()),
	}
}
