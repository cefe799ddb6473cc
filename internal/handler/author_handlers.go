package handler

import (
	"net/http"

	"talescapes-server/internal/engine"
	"talescapes-server/internal/service"

	"github.com/gin-gonic/gin"
)

// createStory creates a new draft with a seed scene.
func (h *StoryHandler) createStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.CreateStory(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStoryResponse(story))
}

func (h *StoryHandler) listMyStories(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	summaries, err := h.authoring.ListMyStories(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *StoryHandler) getStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, err := h.authoring.GetStory(c.Request.Context(), storyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) updateMetadata(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.UpdateMetadata(c.Request.Context(), storyID, userID, service.MetadataUpdate{
		Title:         req.Title,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) deleteStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.authoring.DeleteStory(c.Request.Context(), storyID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) validateStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	violations, err := h.authoring.ValidateStory(c.Request.Context(), storyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: len(violations) == 0, Violations: violations})
}

func (h *StoryHandler) publishStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, err := h.authoring.Publish(c.Request.Context(), storyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) unpublishStory(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, err := h.authoring.Unpublish(c.Request.Context(), storyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) setStartScene(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetStartSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.SetStartScene(c.Request.Context(), storyID, userID, req.SceneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) addScene(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, sceneID, err := h.authoring.AddScene(c.Request.Context(), storyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SceneCreatedResponse{SceneID: sceneID, Story: toStoryResponse(story)})
}

func (h *StoryHandler) updateSceneField(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}
	var req UpdateSceneFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.UpdateSceneField(c.Request.Context(), storyID, userID, sceneID, engine.SceneField(req.Field), req.Value)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) deleteScene(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}

	story, err := h.authoring.DeleteScene(c.Request.Context(), storyID, userID, sceneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) toggleEnding(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}

	story, err := h.authoring.ToggleEnding(c.Request.Context(), storyID, userID, sceneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) addChoice(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}

	story, choiceID, err := h.authoring.AddChoice(c.Request.Context(), storyID, userID, sceneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ChoiceCreatedResponse{ChoiceID: choiceID, Story: toStoryResponse(story)})
}

func (h *StoryHandler) updateChoice(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}
	choiceID, ok := h.parseUUIDParam(c, "choiceId")
	if !ok {
		return
	}
	var req UpdateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.UpdateChoice(c.Request.Context(), storyID, userID, sceneID, choiceID, req.Text, req.NextSceneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) deleteChoice(c *gin.Context) {
	userID, ok := h.getUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sceneID, ok := h.parseUUIDParam(c, "sceneId")
	if !ok {
		return
	}
	choiceID, ok := h.parseUUIDParam(c, "choiceId")
	if !ok {
		return
	}

	story, err := h.authoring.DeleteChoice(c.Request.Context(), storyID, userID, sceneID, choiceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}
