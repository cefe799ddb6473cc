package engine

import (
	"talescapes-server/internal/models"

	"github.com/google/uuid"
)

// Session is a reader's stateful walk over a story graph. The story is
// treated as immutable for the lifetime of the session; the only mutable
// state is the current scene and the visited-scene history stack.
//
// All transitions are total: an invalid input (unknown choice, dangling
// edge, back from the start) leaves the session unchanged. A reading
// surface must never hard-fail mid-story.
type Session struct {
	story   *models.Story
	current uuid.UUID
	history []uuid.UUID
}

// NewSession starts a session at the story's start scene. Returns
// models.ErrNoStartScene if the start scene id does not resolve.
func NewSession(story *models.Story) (*Session, error) {
	if story.FindScene(story.StartSceneID) == nil {
		return nil, models.ErrNoStartScene
	}
	return &Session{
		story:   story,
		current: story.StartSceneID,
		history: []uuid.UUID{story.StartSceneID},
	}, nil
}

// ResumeSession rebuilds a session from a persisted history stack. Every id
// in the history must resolve to a live scene and the stack must end at
// currentSceneID; otherwise models.ErrNoStartScene is returned and the
// caller should fall back to a fresh session (the story may have been
// edited since the snapshot was taken).
func ResumeSession(story *models.Story, currentSceneID uuid.UUID, history []uuid.UUID) (*Session, error) {
	if len(history) == 0 || history[len(history)-1] != currentSceneID {
		return nil, models.ErrNoStartScene
	}
	for _, id := range history {
		if story.FindScene(id) == nil {
			return nil, models.ErrNoStartScene
		}
	}
	return &Session{
		story:   story,
		current: currentSceneID,
		history: append([]uuid.UUID(nil), history...),
	}, nil
}

// Choose follows the choice with the given id on the current scene. Returns
// true if the session moved. Unknown choices and dangling or unresolvable
// targets are no-ops. Choosing from an ending scene that still carries
// resolvable choices works: endings are advisory, not structural.
func (s *Session) Choose(choiceID uuid.UUID) bool {
	scene := s.story.FindScene(s.current)
	if scene == nil {
		return false
	}
	choice := scene.FindChoice(choiceID)
	if choice == nil || choice.NextSceneID == nil {
		return false
	}
	next := s.story.FindScene(*choice.NextSceneID)
	if next == nil {
		return false
	}
	s.current = next.ID
	s.history = append(s.history, next.ID)
	return true
}

// GoBack pops the current scene off the history stack. Returns false at the
// start scene.
func (s *Session) GoBack() bool {
	if len(s.history) <= 1 {
		return false
	}
	s.history = s.history[:len(s.history)-1]
	s.current = s.history[len(s.history)-1]
	return true
}

// Restart resets the session to the start scene.
func (s *Session) Restart() {
	s.current = s.story.StartSceneID
	s.history = []uuid.UUID{s.story.StartSceneID}
}

// CurrentScene returns the scene the reader is on.
func (s *Session) CurrentScene() *models.Scene {
	return s.story.FindScene(s.current)
}

// CurrentSceneID returns the id of the scene the reader is on.
func (s *Session) CurrentSceneID() uuid.UUID {
	return s.current
}

// History returns a copy of the visited-scene stack, oldest first.
func (s *Session) History() []uuid.UUID {
	return append([]uuid.UUID(nil), s.history...)
}

// Ended reports whether the current scene is flagged as an ending.
func (s *Session) Ended() bool {
	scene := s.CurrentScene()
	return scene != nil && scene.IsEnding
}

// Progress returns a heuristic completion fraction: scenes visited so far
// over total scenes, clamped to 1.0. An approximation, not a guarantee;
// graphs may have cycles or multiple endings.
func (s *Session) Progress() float64 {
	if len(s.story.Scenes) == 0 {
		return 0
	}
	p := float64(len(s.history)) / float64(len(s.story.Scenes))
	if p > 1.0 {
		return 1.0
	}
	return p
}

// State snapshots the session into its persistable form.
func (s *Session) State(userID, storyID uuid.UUID) *models.ReadingSessionState {
	return &models.ReadingSessionState{
		UserID:         userID,
		StoryID:        storyID,
		CurrentSceneID: s.current,
		History:        s.History(),
	}
}
