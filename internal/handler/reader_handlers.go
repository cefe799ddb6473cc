package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// --- Reading surface --- //

func (h *StoryHandler) startSession(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	state, err := h.reading.StartSession(c.Request.Context(), userID, storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StoryHandler) getReadingState(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	state, err := h.reading.GetState(c.Request.Context(), userID, storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StoryHandler) choose(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	var req ChooseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	state, err := h.reading.Choose(c.Request.Context(), userID, storyID, req.ChoiceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StoryHandler) goBack(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	state, err := h.reading.GoBack(c.Request.Context(), userID, storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StoryHandler) restart(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	state, err := h.reading.Restart(c.Request.Context(), userID, storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StoryHandler) endSession(c *gin.Context) {
	userID, storyID, ok := h.readParams(c)
	if !ok {
		return
	}
	if err := h.reading.EndSession(c.Request.Context(), userID, storyID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) readParams(c *gin.Context) (userID, storyID uuid.UUID, ok bool) {
	userID, ok = h.getUserIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	storyID, ok = h.parseUUIDParam(c, "storyId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, storyID, true
}

// --- Catalog surface --- //

func (h *StoryHandler) listPublished(c *gin.Context) {
	limit, offset, ok := h.pagination(c)
	if !ok {
		return
	}
	summaries, err := h.catalog.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *StoryHandler) listFeatured(c *gin.Context) {
	limit, offset, ok := h.pagination(c)
	if !ok {
		return
	}
	summaries, err := h.catalog.ListFeatured(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *StoryHandler) getPublishedStory(c *gin.Context) {
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	story, err := h.catalog.GetPublishedStory(c.Request.Context(), storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

// --- Admin surface --- //

func (h *StoryHandler) listAllStories(c *gin.Context) {
	limit, offset, ok := h.pagination(c)
	if !ok {
		return
	}
	summaries, err := h.catalog.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *StoryHandler) setFeatured(c *gin.Context) {
	storyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.authoring.SetFeatured(c.Request.Context(), storyID, req.Featured)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = defaultListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.logger.Warn("Invalid limit parameter received", zap.String("limit", limitStr), zap.Error(err))
			c.JSON(http.StatusBadRequest, APIError{Error: "invalid 'limit' parameter"})
			return 0, 0, false
		}
		if parsed > maxListLimit {
			parsed = maxListLimit
		}
		limit = parsed
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, APIError{Error: "invalid 'offset' parameter"})
			return 0, 0, false
		}
		offset = parsed
	}
	return limit, offset, true
}
