// Package engine contains the story graph engine: edit-time integrity
// operations and the read-time traversal session. The engine holds no state
// of its own and performs no I/O; persistence belongs to the caller.
package engine

import (
	"fmt"

	"talescapes-server/internal/models"

	"github.com/google/uuid"
)

// SceneField names a scene attribute editable through UpdateSceneField.
type SceneField string

const (
	FieldTitle   SceneField = "title"
	FieldContent SceneField = "content"
	FieldImage   SceneField = "image"
	FieldAudio   SceneField = "audio"
)

const placeholderChoiceText = "Continue..."

// AddScene appends a new empty scene with an auto-generated title and returns
// it. Always succeeds. If the story had no scenes, the new scene becomes the
// start scene.
func AddScene(story *models.Story) *models.Scene {
	scene := models.Scene{
		ID:      uuid.New(),
		Title:   fmt.Sprintf("Scene %d", len(story.Scenes)+1),
		Choices: []models.Choice{},
	}
	story.Scenes = append(story.Scenes, scene)
	if len(story.Scenes) == 1 {
		story.StartSceneID = scene.ID
	}
	return &story.Scenes[len(story.Scenes)-1]
}

// DeleteScene removes the scene and clears every choice in the remaining
// scenes that pointed at it. The choice itself survives as dangling so the
// author can re-point it later. All checks run before any mutation: a
// rejection leaves the story untouched.
func DeleteScene(story *models.Story, sceneID uuid.UUID) error {
	if len(story.Scenes) <= 1 {
		return models.ErrLastScene
	}
	if sceneID == story.StartSceneID {
		return models.ErrIsStartScene
	}

	idx := -1
	for i := range story.Scenes {
		if story.Scenes[i].ID == sceneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ErrUnknownScene
	}

	story.Scenes = append(story.Scenes[:idx], story.Scenes[idx+1:]...)
	for i := range story.Scenes {
		for j := range story.Scenes[i].Choices {
			choice := &story.Scenes[i].Choices[j]
			if choice.NextSceneID != nil && *choice.NextSceneID == sceneID {
				choice.NextSceneID = nil
			}
		}
	}
	return nil
}

// SetStartScene designates sceneID as the traversal entry point.
func SetStartScene(story *models.Story, sceneID uuid.UUID) error {
	if story.FindScene(sceneID) == nil {
		return models.ErrUnknownScene
	}
	story.StartSceneID = sceneID
	return nil
}

// ToggleEnding flips the scene's ending flag. Existing choices are kept, not
// cleared: the reading surface hides them, and un-toggling restores them.
func ToggleEnding(story *models.Story, sceneID uuid.UUID) error {
	scene := story.FindScene(sceneID)
	if scene == nil {
		return models.ErrUnknownScene
	}
	scene.IsEnding = !scene.IsEnding
	return nil
}

// UpdateSceneField applies a single text value to one of the editable scene
// attributes. Unknown scenes and unknown fields are silent no-ops so partial
// editor saves never fail. An empty value clears the media URLs.
func UpdateSceneField(story *models.Story, sceneID uuid.UUID, field SceneField, value string) {
	scene := story.FindScene(sceneID)
	if scene == nil {
		return
	}
	switch field {
	case FieldTitle:
		scene.Title = value
	case FieldContent:
		scene.Content = value
	case FieldImage:
		scene.ImageURL = optionalString(value)
	case FieldAudio:
		scene.AudioURL = optionalString(value)
	}
}

// AddChoice appends a dangling choice with placeholder text to the scene and
// returns it.
func AddChoice(story *models.Story, sceneID uuid.UUID) (*models.Choice, error) {
	scene := story.FindScene(sceneID)
	if scene == nil {
		return nil, models.ErrUnknownScene
	}
	scene.Choices = append(scene.Choices, models.Choice{
		ID:   uuid.New(),
		Text: placeholderChoiceText,
	})
	return &scene.Choices[len(scene.Choices)-1], nil
}

// UpdateChoice replaces the choice's text and target atomically. The target
// may be nil (dangling) and is not validated against existing scenes here;
// validation is an explicit, separate call.
func UpdateChoice(story *models.Story, sceneID, choiceID uuid.UUID, text string, nextSceneID *uuid.UUID) error {
	scene := story.FindScene(sceneID)
	if scene == nil {
		return models.ErrUnknownScene
	}
	choice := scene.FindChoice(choiceID)
	if choice == nil {
		return models.ErrUnknownChoice
	}
	choice.Text = text
	if nextSceneID != nil {
		v := *nextSceneID
		choice.NextSceneID = &v
	} else {
		choice.NextSceneID = nil
	}
	return nil
}

// DeleteChoice removes the choice from the scene.
func DeleteChoice(story *models.Story, sceneID, choiceID uuid.UUID) error {
	scene := story.FindScene(sceneID)
	if scene == nil {
		return models.ErrUnknownScene
	}
	for i := range scene.Choices {
		if scene.Choices[i].ID == choiceID {
			scene.Choices = append(scene.Choices[:i], scene.Choices[i+1:]...)
			return nil
		}
	}
	return models.ErrUnknownChoice
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
