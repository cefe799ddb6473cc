package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ViolationCode identifies a class of structural problem found by Validate.
type ViolationCode string

const (
	ViolationEmptyScenes       ViolationCode = "empty_scenes"
	ViolationDanglingStart     ViolationCode = "dangling_start_scene"
	ViolationDuplicateSceneID  ViolationCode = "duplicate_scene_id"
	ViolationDuplicateChoiceID ViolationCode = "duplicate_choice_id"
)

// Violation describes a single structural problem in a story.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
	SceneID *uuid.UUID    `json:"scene_id,omitempty"`
}

// Validate checks the story's structural invariants and returns every
// violation found. An empty result means the story is structurally sound.
// Validation is purely structural: reachability of individual scenes is
// deliberately not enforced (authors build graphs incrementally).
func (s *Story) Validate() []Violation {
	violations := []Violation{}

	if len(s.Scenes) == 0 {
		violations = append(violations, Violation{
			Code:    ViolationEmptyScenes,
			Message: "story has no scenes",
		})
	} else if s.FindScene(s.StartSceneID) == nil {
		violations = append(violations, Violation{
			Code:    ViolationDanglingStart,
			Message: fmt.Sprintf("start scene %s does not exist", s.StartSceneID),
		})
	}

	seenScenes := make(map[uuid.UUID]bool, len(s.Scenes))
	for i := range s.Scenes {
		scene := &s.Scenes[i]
		if seenScenes[scene.ID] {
			id := scene.ID
			violations = append(violations, Violation{
				Code:    ViolationDuplicateSceneID,
				Message: fmt.Sprintf("scene id %s appears more than once", scene.ID),
				SceneID: &id,
			})
		}
		seenScenes[scene.ID] = true

		seenChoices := make(map[uuid.UUID]bool, len(scene.Choices))
		for _, choice := range scene.Choices {
			if seenChoices[choice.ID] {
				id := scene.ID
				violations = append(violations, Violation{
					Code:    ViolationDuplicateChoiceID,
					Message: fmt.Sprintf("choice id %s appears more than once in scene %s", choice.ID, scene.ID),
					SceneID: &id,
				})
			}
			seenChoices[choice.ID] = true
		}
	}

	return violations
}

// IsReachable reports whether sceneID can be reached from the start scene by
// following non-dangling choice edges. Diagnostic helper only; edit
// operations never enforce full-graph reachability.
func (s *Story) IsReachable(sceneID uuid.UUID) bool {
	if s.FindScene(s.StartSceneID) == nil {
		return false
	}

	visited := map[uuid.UUID]bool{}
	queue := []uuid.UUID{s.StartSceneID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if current == sceneID {
			return true
		}
		scene := s.FindScene(current)
		if scene == nil {
			continue
		}
		for _, choice := range scene.Choices {
			if choice.NextSceneID != nil && !visited[*choice.NextSceneID] {
				queue = append(queue, *choice.NextSceneID)
			}
		}
	}
	return false
}
