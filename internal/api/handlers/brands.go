package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/models"
)

// BrandStore defines the interface for brand persistence operations.
type BrandStore interface {
	GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]*models.Brand, error)
	ListBrandsBySuperuser(ctx context.Context, superuserID uuid.UUID) ([]*models.Brand, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	SetBrandStatus(ctx context.Context, id uuid.UUID, status models.BrandStatus) error
	GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error)
	CreateAdminAuditLog(ctx context.Context, log *models.AdminAuditLog) error
}

// SubscriptionRenewer reactivates a brand subscription with a new period end.
type SubscriptionRenewer interface {
	Renew(ctx context.Context, brandID uuid.UUID, periodEnd time.Time) error
}

// BrandsHandler handles brand HTTP endpoints.
type BrandsHandler struct {
	store   BrandStore
	renewer SubscriptionRenewer
	logger  zerolog.Logger
}

// NewBrandsHandler creates a new BrandsHandler.
func NewBrandsHandler(store BrandStore, renewer SubscriptionRenewer, logger zerolog.Logger) *BrandsHandler {
	return &BrandsHandler{
		store:   store,
		renewer: renewer,
		logger:  logger.With().Str("component", "brands_handler").Logger(),
	}
}

// RegisterRoutes registers brand routes for authenticated superusers.
func (h *BrandsHandler) RegisterRoutes(r *gin.RouterGroup) {
	brands := r.Group("/brands")
	{
		brands.GET("", h.List)
		brands.GET("/:id", h.Get)
		brands.PUT("/:id", h.Update)
	}
}

// RegisterAdminRoutes registers routes that require superadmin.
func (h *BrandsHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	brands := r.Group("/brands")
	{
		brands.PUT("/:id/status", h.SetStatus)
		brands.POST("/:id/renew", h.Renew)
	}
}

// RegisterPublicRoutes registers the visitor-facing brand lookup used by the
// gallery edge to resolve a subdomain.
func (h *BrandsHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/public/:slug/brand", h.PublicBySlug)
}

// List returns the brands visible to the caller: all of them for a
// superadmin, owned brands otherwise.
// GET /api/v1/brands
func (h *BrandsHandler) List(c *gin.Context) {
	user := middleware.RequireUser(c)
	if user == nil {
		return
	}

	var (
		brands []*models.Brand
		err    error
	)
	if user.IsSuperadmin {
		brands, err = h.store.ListBrands(c.Request.Context())
	} else {
		brands, err = h.store.ListBrandsBySuperuser(c.Request.Context(), user.ID)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list brands")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands, "count": len(brands)})
}

// Get returns a single brand.
// GET /api/v1/brands/:id
func (h *BrandsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, id) == nil {
		return
	}

	brand, err := h.store.GetBrandByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("brand_id", id.String()).Msg("failed to get brand")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get brand"})
		return
	}
	if brand == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return
	}

	c.JSON(http.StatusOK, brand)
}

// UpdateBrandRequest is the editable subset of a brand. Subdomain and slug
// are immutable after provisioning.
type UpdateBrandRequest struct {
	Name       string           `json:"name" binding:"required"`
	OwnerEmail string           `json:"owner_email" binding:"required"`
	Phone      string           `json:"phone"`
	Address    string           `json:"address"`
	Branding   *models.Branding `json:"branding"`
	SEO        *models.SEO      `json:"seo"`
	BillingRef string           `json:"billing_ref"`
}

// Update edits a brand's mutable fields.
// PUT /api/v1/brands/:id
func (h *BrandsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := authorizeBrand(c, h.store, id)
	if user == nil {
		return
	}

	var req UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and owner_email are required"})
		return
	}

	brand, err := h.store.GetBrandByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("brand_id", id.String()).Msg("failed to get brand")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get brand"})
		return
	}
	if brand == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return
	}

	brand.Name = req.Name
	brand.OwnerEmail = req.OwnerEmail
	brand.Phone = req.Phone
	brand.Address = req.Address
	if req.Branding != nil {
		brand.Branding = *req.Branding
	}
	if req.SEO != nil {
		brand.SEO = *req.SEO
	}
	if req.BillingRef != "" {
		brand.Subscription.BillingRef = req.BillingRef
	}

	if err := h.store.UpdateBrand(c.Request.Context(), brand); err != nil {
		h.logger.Error().Err(err).Str("brand_id", id.String()).Msg("failed to update brand")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update brand"})
		return
	}

	h.writeAudit(c, user.ID, models.ActionUpdateBrand, brand.ID, map[string]string{"name": brand.Name})
	c.JSON(http.StatusOK, brand)
}

// SetStatusRequest is the brand status change payload.
type SetStatusRequest struct {
	Status models.BrandStatus `json:"status" binding:"required"`
}

// SetStatus suspends or reactivates a brand.
// PUT /api/v1/admin/brands/:id/status
func (h *BrandsHandler) SetStatus(c *gin.Context) {
	user := middleware.RequireSuperadmin(c)
	if user == nil {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	switch req.Status {
	case models.BrandStatusActive, models.BrandStatusSuspended, models.BrandStatusPending:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	if err := h.store.SetBrandStatus(c.Request.Context(), id, req.Status); err != nil {
		h.logger.Error().Err(err).Str("brand_id", id.String()).Msg("failed to set brand status")
		c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return
	}

	action := models.ActionSuspendBrand
	if req.Status == models.BrandStatusActive {
		action = models.ActionActivateBrand
	}
	h.writeAudit(c, user.ID, action, id, map[string]string{"status": string(req.Status)})

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// RenewRequest is the subscription renewal payload.
type RenewRequest struct {
	PeriodEnd time.Time `json:"period_end" binding:"required"`
}

// Renew reactivates a brand subscription with a new period end.
// POST /api/v1/admin/brands/:id/renew
func (h *BrandsHandler) Renew(c *gin.Context) {
	user := middleware.RequireSuperadmin(c)
	if user == nil {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_end is required"})
		return
	}

	if err := h.renewer.Renew(c.Request.Context(), id, req.PeriodEnd); err != nil {
		h.logger.Error().Err(err).Str("brand_id", id.String()).Msg("failed to renew subscription")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.writeAudit(c, user.ID, models.ActionActivateBrand, id, map[string]string{
		"reason":     "subscription_renewed",
		"period_end": req.PeriodEnd.Format(time.RFC3339),
	})
	c.JSON(http.StatusOK, gin.H{"status": "renewed"})
}

// PublicBrandResponse is the sanitized brand view served to visitors.
type PublicBrandResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Subdomain string          `json:"subdomain"`
	Branding  models.Branding `json:"branding"`
	SEO       models.SEO      `json:"seo"`
}

// PublicBySlug resolves a brand slug to its public site configuration.
// Suspended and pending brands are indistinguishable from missing ones.
// GET /public/:slug/brand
func (h *BrandsHandler) PublicBySlug(c *gin.Context) {
	slug := c.Param("slug")

	brand, err := h.store.GetBrandBySlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error().Err(err).Str("slug", slug).Msg("failed to look up brand")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up brand"})
		return
	}
	if brand == nil || !brand.IsActive() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, PublicBrandResponse{
		ID:        brand.ID,
		Name:      brand.Name,
		Slug:      brand.Slug,
		Subdomain: brand.Subdomain,
		Branding:  brand.Branding,
		SEO:       brand.SEO,
	})
}

func (h *BrandsHandler) writeAudit(c *gin.Context, actorID uuid.UUID, action models.AdminAction, brandID uuid.UUID, fields map[string]string) {
	details, err := json.Marshal(fields)
	if err != nil {
		return
	}
	entry := models.NewAdminAuditLog(actorID, action, &brandID, details)
	if err := h.store.CreateAdminAuditLog(c.Request.Context(), entry); err != nil {
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to write audit entry")
	}
}
