package engine_test

import (
	"fmt"
	"testing"

	"talescapes-server/internal/engine"
	"talescapes-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeSceneStory builds the canonical fixture: S1 (start) -C1-> S2 -C2-> S3 (ending).
func threeSceneStory(t *testing.T) (story *models.Story, s1, s2, s3, c1, c2 uuid.UUID) {
	t.Helper()
	s1, s2, s3 = uuid.New(), uuid.New(), uuid.New()
	c1, c2 = uuid.New(), uuid.New()
	next2, next3 := s2, s3
	story = &models.Story{
		ID:           uuid.New(),
		AuthorID:     uuid.New(),
		Title:        "The Fork in the Road",
		Status:       models.StatusDraft,
		StartSceneID: s1,
		Scenes: []models.Scene{
			{ID: s1, Title: "Scene 1", Choices: []models.Choice{{ID: c1, Text: "Go on", NextSceneID: &next2}}},
			{ID: s2, Title: "Scene 2", Choices: []models.Choice{{ID: c2, Text: "Further", NextSceneID: &next3}}},
			{ID: s3, Title: "Scene 3", IsEnding: true, Choices: []models.Choice{}},
		},
	}
	return story, s1, s2, s3, c1, c2
}

func TestAddScene(t *testing.T) {
	t.Run("First scene becomes the start scene", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Scenes: []models.Scene{}}

		scene := engine.AddScene(story)

		require.NotNil(t, scene)
		assert.Equal(t, "Scene 1", scene.Title)
		assert.Equal(t, scene.ID, story.StartSceneID)
		assert.Len(t, story.Scenes, 1)
	})

	t.Run("Subsequent scenes get sequential titles and do not steal the start", func(t *testing.T) {
		story, s1, _, _, _, _ := threeSceneStory(t)

		scene := engine.AddScene(story)

		assert.Equal(t, "Scene 4", scene.Title)
		assert.Equal(t, s1, story.StartSceneID)
		assert.False(t, scene.IsEnding)
		assert.Empty(t, scene.Choices)
		assert.Len(t, story.Scenes, 4)
	})
}

func TestDeleteScene(t *testing.T) {
	t.Run("Deleting the only scene is rejected", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Scenes: []models.Scene{}}
		scene := engine.AddScene(story)
		before := story.Clone()

		err := engine.DeleteScene(story, scene.ID)

		assert.ErrorIs(t, err, models.ErrLastScene)
		assert.Equal(t, before, story.Clone())
	})

	t.Run("Deleting the start scene is rejected and leaves the story unchanged", func(t *testing.T) {
		story, s1, _, _, _, _ := threeSceneStory(t)
		before := story.Clone()

		err := engine.DeleteScene(story, s1)

		assert.ErrorIs(t, err, models.ErrIsStartScene)
		assert.Equal(t, before, story.Clone())
	})

	t.Run("Deleting an unknown scene is rejected", func(t *testing.T) {
		story, _, _, _, _, _ := threeSceneStory(t)

		err := engine.DeleteScene(story, uuid.New())

		assert.ErrorIs(t, err, models.ErrUnknownScene)
	})

	t.Run("Deletion clears choices pointing at the deleted scene", func(t *testing.T) {
		story, s1, s2, s3, c1, _ := threeSceneStory(t)

		err := engine.DeleteScene(story, s2)

		require.NoError(t, err)
		assert.Len(t, story.Scenes, 2)
		assert.Nil(t, story.FindScene(s2))

		// C1 used to point at S2; the choice survives as dangling.
		scene1 := story.FindScene(s1)
		require.NotNil(t, scene1)
		choice := scene1.FindChoice(c1)
		require.NotNil(t, choice)
		assert.Nil(t, choice.NextSceneID)
		assert.Equal(t, "Go on", choice.Text)

		// S3 is untouched.
		assert.NotNil(t, story.FindScene(s3))
	})
}

func TestSetStartScene(t *testing.T) {
	story, _, s2, _, _, _ := threeSceneStory(t)

	require.NoError(t, engine.SetStartScene(story, s2))
	assert.Equal(t, s2, story.StartSceneID)

	assert.ErrorIs(t, engine.SetStartScene(story, uuid.New()), models.ErrUnknownScene)
	assert.Equal(t, s2, story.StartSceneID)
}

func TestToggleEnding(t *testing.T) {
	t.Run("Toggling keeps existing choices", func(t *testing.T) {
		story, _, s2, _, _, _ := threeSceneStory(t)

		require.NoError(t, engine.ToggleEnding(story, s2))
		scene := story.FindScene(s2)
		assert.True(t, scene.IsEnding)
		assert.Len(t, scene.Choices, 1)

		require.NoError(t, engine.ToggleEnding(story, s2))
		assert.False(t, story.FindScene(s2).IsEnding)
		assert.Len(t, story.FindScene(s2).Choices, 1)
	})

	t.Run("Unknown scene is rejected", func(t *testing.T) {
		story, _, _, _, _, _ := threeSceneStory(t)
		assert.ErrorIs(t, engine.ToggleEnding(story, uuid.New()), models.ErrUnknownScene)
	})
}

func TestUpdateSceneField(t *testing.T) {
	story, s1, _, _, _, _ := threeSceneStory(t)

	engine.UpdateSceneField(story, s1, engine.FieldTitle, "Crossroads")
	engine.UpdateSceneField(story, s1, engine.FieldContent, "You stand at a fork.\nThe left path is dark.")
	engine.UpdateSceneField(story, s1, engine.FieldImage, "https://cdn.example.com/fork.webp")
	engine.UpdateSceneField(story, s1, engine.FieldAudio, "https://cdn.example.com/wind.ogg")

	scene := story.FindScene(s1)
	assert.Equal(t, "Crossroads", scene.Title)
	assert.Equal(t, "You stand at a fork.\nThe left path is dark.", scene.Content)
	require.NotNil(t, scene.ImageURL)
	assert.Equal(t, "https://cdn.example.com/fork.webp", *scene.ImageURL)
	require.NotNil(t, scene.AudioURL)

	t.Run("Empty value clears media URLs", func(t *testing.T) {
		engine.UpdateSceneField(story, s1, engine.FieldImage, "")
		assert.Nil(t, story.FindScene(s1).ImageURL)
	})

	t.Run("Unknown scene is a silent no-op", func(t *testing.T) {
		before := story.Clone()
		engine.UpdateSceneField(story, uuid.New(), engine.FieldTitle, "ghost")
		assert.Equal(t, before, story.Clone())
	})

	t.Run("Unknown field is a silent no-op", func(t *testing.T) {
		before := story.Clone()
		engine.UpdateSceneField(story, s1, engine.SceneField("mood"), "gloomy")
		assert.Equal(t, before, story.Clone())
	})
}

func TestAddChoice(t *testing.T) {
	story, s1, _, _, _, _ := threeSceneStory(t)

	choice, err := engine.AddChoice(story, s1)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, choice.ID)
	assert.NotEmpty(t, choice.Text)
	assert.Nil(t, choice.NextSceneID)
	assert.Len(t, story.FindScene(s1).Choices, 2)

	_, err = engine.AddChoice(story, uuid.New())
	assert.ErrorIs(t, err, models.ErrUnknownScene)
}

func TestUpdateChoice(t *testing.T) {
	story, s1, _, s3, c1, _ := threeSceneStory(t)

	t.Run("Text and target are replaced atomically", func(t *testing.T) {
		require.NoError(t, engine.UpdateChoice(story, s1, c1, "Take the shortcut", &s3))
		choice := story.FindScene(s1).FindChoice(c1)
		assert.Equal(t, "Take the shortcut", choice.Text)
		require.NotNil(t, choice.NextSceneID)
		assert.Equal(t, s3, *choice.NextSceneID)
	})

	t.Run("A nil target makes the choice dangling", func(t *testing.T) {
		require.NoError(t, engine.UpdateChoice(story, s1, c1, "Undecided", nil))
		choice := story.FindScene(s1).FindChoice(c1)
		assert.Nil(t, choice.NextSceneID)
	})

	t.Run("A target is not validated against existing scenes", func(t *testing.T) {
		ghost := uuid.New()
		require.NoError(t, engine.UpdateChoice(story, s1, c1, "Into the void", &ghost))
		choice := story.FindScene(s1).FindChoice(c1)
		require.NotNil(t, choice.NextSceneID)
		assert.Equal(t, ghost, *choice.NextSceneID)
	})

	t.Run("Unknown scene or choice is rejected", func(t *testing.T) {
		assert.ErrorIs(t, engine.UpdateChoice(story, uuid.New(), c1, "x", nil), models.ErrUnknownScene)
		assert.ErrorIs(t, engine.UpdateChoice(story, s1, uuid.New(), "x", nil), models.ErrUnknownChoice)
	})
}

func TestDeleteChoice(t *testing.T) {
	story, s1, _, _, c1, _ := threeSceneStory(t)

	require.NoError(t, engine.DeleteChoice(story, s1, c1))
	assert.Empty(t, story.FindScene(s1).Choices)

	assert.ErrorIs(t, engine.DeleteChoice(story, s1, c1), models.ErrUnknownChoice)
	assert.ErrorIs(t, engine.DeleteChoice(story, uuid.New(), c1), models.ErrUnknownScene)
}

// TestEditSequencePreservesInvariants drives a long mixed sequence of edit
// operations and checks after every step that the story still has at least
// one scene and a resolvable start scene.
func TestEditSequencePreservesInvariants(t *testing.T) {
	story := &models.Story{ID: uuid.New(), Scenes: []models.Scene{}}
	engine.AddScene(story)

	checkInvariants := func(step string) {
		require.GreaterOrEqual(t, len(story.Scenes), 1, "after %s", step)
		require.NotNil(t, story.FindScene(story.StartSceneID), "after %s", step)
	}

	for i := 0; i < 10; i++ {
		scene := engine.AddScene(story)
		checkInvariants(fmt.Sprintf("addScene #%d", i))

		choice, err := engine.AddChoice(story, story.StartSceneID)
		require.NoError(t, err)
		require.NoError(t, engine.UpdateChoice(story, story.StartSceneID, choice.ID, "onwards", &scene.ID))
		checkInvariants("addChoice/updateChoice")

		if i%3 == 0 {
			require.NoError(t, engine.ToggleEnding(story, scene.ID))
			checkInvariants("toggleEnding")
		}
		if i%4 == 0 && len(story.Scenes) > 2 {
			victim := story.Scenes[len(story.Scenes)-2].ID
			if victim != story.StartSceneID {
				require.NoError(t, engine.DeleteScene(story, victim))
				checkInvariants("deleteScene")
			}
		}
	}

	// Rejections never break the invariants either.
	_ = engine.DeleteScene(story, story.StartSceneID)
	checkInvariants("rejected deleteScene(start)")
	_ = engine.SetStartScene(story, uuid.New())
	checkInvariants("rejected setStartScene(unknown)")
}
