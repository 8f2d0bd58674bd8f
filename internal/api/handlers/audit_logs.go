package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/models"
)

// defaultAuditLogLimit is the page size when the client does not specify one.
const defaultAuditLogLimit = 50

// AuditLogStore defines the interface for audit log persistence operations.
type AuditLogStore interface {
	ListAdminAuditLogs(ctx context.Context, limit, offset int) ([]*models.AdminAuditLog, int, error)
}

// AuditLogsHandler handles the superadmin audit trail endpoints.
type AuditLogsHandler struct {
	store  AuditLogStore
	logger zerolog.Logger
}

// NewAuditLogsHandler creates a new AuditLogsHandler.
func NewAuditLogsHandler(store AuditLogStore, logger zerolog.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{
		store:  store,
		logger: logger.With().Str("component", "audit_logs_handler").Logger(),
	}
}

// RegisterRoutes registers audit log routes. The group must already require
// superadmin.
func (h *AuditLogsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

// AuditLogListResponse is the response for listing audit logs.
type AuditLogListResponse struct {
	AuditLogs  []*models.AdminAuditLog `json:"audit_logs"`
	TotalCount int                     `json:"total_count"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

// List returns admin audit entries, newest first.
// GET /api/v1/admin/audit-logs
// Query params: limit, offset
func (h *AuditLogsHandler) List(c *gin.Context) {
	if middleware.RequireSuperadmin(c) == nil {
		return
	}

	limit := defaultAuditLogLimit
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}

	logs, total, err := h.store.ListAdminAuditLogs(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, AuditLogListResponse{
		AuditLogs:  logs,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}
