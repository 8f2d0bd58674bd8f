package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/landing"
	"github.com/framehaus/framehaus/internal/models"
)

// LandingHandler handles landing page editing, publishing, and public serving.
type LandingHandler struct {
	service  *landing.Service
	profiles profileStore
	logger   zerolog.Logger
}

// NewLandingHandler creates a new LandingHandler.
func NewLandingHandler(service *landing.Service, profiles profileStore, logger zerolog.Logger) *LandingHandler {
	return &LandingHandler{
		service:  service,
		profiles: profiles,
		logger:   logger.With().Str("component", "landing_handler").Logger(),
	}
}

// RegisterRoutes registers authenticated landing editor routes.
func (h *LandingHandler) RegisterRoutes(r *gin.RouterGroup) {
	pages := r.Group("/brands/:id/landing")
	{
		pages.GET("/draft", h.GetDraft)
		pages.PUT("/draft", h.SaveDraft)
		pages.POST("/publish", h.Publish)
	}
}

// RegisterPublicRoutes registers the visitor-facing landing page endpoint.
func (h *LandingHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/public/:slug/landing", h.Published)
}

// GetDraft returns the brand's working draft.
// GET /api/v1/brands/:id/landing/draft
func (h *LandingHandler) GetDraft(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.profiles, brandID) == nil {
		return
	}

	draft, err := h.service.GetDraft(c.Request.Context(), brandID)
	if err != nil {
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to get draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get draft"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

// SaveDraftRequest is the draft payload.
type SaveDraftRequest struct {
	Sections []models.Section `json:"sections" binding:"required"`
}

// SaveDraft replaces the brand's working draft.
// PUT /api/v1/brands/:id/landing/draft
func (h *LandingHandler) SaveDraft(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.profiles, brandID) == nil {
		return
	}

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sections is required"})
		return
	}

	if err := h.service.SaveDraft(c.Request.Context(), brandID, req.Sections); err != nil {
		if errors.Is(err, landing.ErrInvalidSection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to save draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Publish snapshots the current draft as the new live version.
// POST /api/v1/brands/:id/landing/publish
func (h *LandingHandler) Publish(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.profiles, brandID) == nil {
		return
	}

	snapshot, err := h.service.Publish(c.Request.Context(), brandID)
	if err != nil {
		if errors.Is(err, db.ErrNoDraft) {
			c.JSON(http.StatusConflict, gin.H{"error": "nothing to publish, save a draft first"})
			return
		}
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to publish")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Published serves the latest published landing page for a brand slug.
// GET /public/:slug/landing
func (h *LandingHandler) Published(c *gin.Context) {
	slug := c.Param("slug")

	snapshot, err := h.service.Published(c.Request.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, landing.ErrBrandNotFound), errors.Is(err, landing.ErrBrandInactive):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		default:
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to serve landing page")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
		}
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
