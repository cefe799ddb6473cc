package handler

import (
	"errors"
	"net/http"

	"talescapes-server/internal/middleware"
	"talescapes-server/internal/models"
	"talescapes-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIError is the standardized error response body.
type APIError struct {
	Error string `json:"error"`
}

// StoryHandler handles HTTP requests for authoring, reading and browsing
// stories.
type StoryHandler struct {
	authoring service.AuthoringService
	reading   service.ReadingService
	catalog   service.CatalogService
	logger    *zap.Logger
	jwtSecret string
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(authoring service.AuthoringService, reading service.ReadingService, catalog service.CatalogService, logger *zap.Logger, jwtSecret string) *StoryHandler {
	return &StoryHandler{
		authoring: authoring,
		reading:   reading,
		catalog:   catalog,
		logger:    logger.Named("StoryHandler"),
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all story routes on the router.
func (h *StoryHandler) RegisterRoutes(r *gin.Engine) {
	authMW := middleware.RequireAuth(h.jwtSecret, h.logger)
	adminMW := middleware.RequireAdmin(h.logger)

	api := r.Group("/api")

	// Authoring surface: everything is scoped to the authenticated author.
	stories := api.Group("/stories", authMW)
	{
		stories.POST("", h.createStory)
		stories.GET("", h.listMyStories)
		stories.GET("/:id", h.getStory)
		stories.PUT("/:id", h.updateMetadata)
		stories.DELETE("/:id", h.deleteStory)
		stories.GET("/:id/validation", h.validateStory)
		stories.POST("/:id/publish", h.publishStory)
		stories.POST("/:id/unpublish", h.unpublishStory)
		stories.PUT("/:id/start-scene", h.setStartScene)

		stories.POST("/:id/scenes", h.addScene)
		stories.PATCH("/:id/scenes/:sceneId", h.updateSceneField)
		stories.DELETE("/:id/scenes/:sceneId", h.deleteScene)
		stories.POST("/:id/scenes/:sceneId/ending", h.toggleEnding)

		stories.POST("/:id/scenes/:sceneId/choices", h.addChoice)
		stories.PUT("/:id/scenes/:sceneId/choices/:choiceId", h.updateChoice)
		stories.DELETE("/:id/scenes/:sceneId/choices/:choiceId", h.deleteChoice)
	}

	// Public catalog.
	catalog := api.Group("/catalog")
	{
		catalog.GET("/stories", h.listPublished)
		catalog.GET("/featured", h.listFeatured)
		catalog.GET("/stories/:id", h.getPublishedStory)
	}

	// Reading surface.
	read := api.Group("/read", authMW)
	{
		read.POST("/:storyId/session", h.startSession)
		read.GET("/:storyId", h.getReadingState)
		read.POST("/:storyId/choose", h.choose)
		read.POST("/:storyId/back", h.goBack)
		read.POST("/:storyId/restart", h.restart)
		read.DELETE("/:storyId/session", h.endSession)
	}

	// Admin surface.
	admin := api.Group("/admin", authMW, adminMW)
	{
		admin.GET("/stories", h.listAllStories)
		admin.PUT("/stories/:id/featured", h.setFeatured)
	}
}

// handleServiceError maps service errors to HTTP statuses.
func (h *StoryHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{Error: "not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, APIError{Error: "forbidden"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, APIError{Error: "unauthorized"})
	case errors.Is(err, models.ErrLastScene),
		errors.Is(err, models.ErrIsStartScene),
		errors.Is(err, models.ErrStoryInvalid):
		c.JSON(http.StatusConflict, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrUnknownScene),
		errors.Is(err, models.ErrUnknownChoice),
		errors.Is(err, models.ErrBadRequest):
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrNoStartScene),
		errors.Is(err, service.ErrStoryNotReadable):
		c.JSON(http.StatusConflict, APIError{Error: err.Error()})
	default:
		h.logger.Error("Unhandled service error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Error: "internal server error"})
	}
}

// getUserIDFromContext extracts the authenticated user id or aborts with 401.
func (h *StoryHandler) getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{Error: "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// parseUUIDParam parses a uuid path parameter or aborts with 400.
func (h *StoryHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid '" + name + "' parameter"})
		return uuid.Nil, false
	}
	return id, true
}
