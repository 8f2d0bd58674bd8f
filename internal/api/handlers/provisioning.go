package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/provisioning"
)

// ProvisioningHandler exposes brand provisioning to the superadmin console.
type ProvisioningHandler struct {
	provisioner *provisioning.Provisioner
	logger      zerolog.Logger
}

// NewProvisioningHandler creates a new ProvisioningHandler.
func NewProvisioningHandler(provisioner *provisioning.Provisioner, logger zerolog.Logger) *ProvisioningHandler {
	return &ProvisioningHandler{
		provisioner: provisioner,
		logger:      logger.With().Str("component", "provisioning_handler").Logger(),
	}
}

// RegisterRoutes registers provisioning routes. The group must already
// require superadmin.
func (h *ProvisioningHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/brands", h.Provision)
}

// Provision creates a brand and its owning identity.
// POST /api/v1/admin/brands
//
// The temporary password in the response is shown once and never stored;
// the UI is responsible for display-once semantics.
func (h *ProvisioningHandler) Provision(c *gin.Context) {
	user := middleware.RequireSuperadmin(c)
	if user == nil {
		return
	}

	var req provisioning.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.provisioner.Provision(c.Request.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, provisioning.ErrSubdomainTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "subdomain is already taken"})
		default:
			h.logger.Error().Err(err).
				Str("subdomain", req.Subdomain).
				Msg("provisioning failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "provisioning failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}
