package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/models"
)

// AlbumStore defines the interface for album persistence operations.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, album *models.Album) error
	GetAlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error)
	ListAlbumsByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Album, error)
	UpdateAlbum(ctx context.Context, album *models.Album) error
	ReorderAlbums(ctx context.Context, brandID uuid.UUID, orderedIDs []uuid.UUID) error
	DeleteAlbum(ctx context.Context, id uuid.UUID) error
	GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error)
}

// AlbumsHandler handles album HTTP endpoints.
type AlbumsHandler struct {
	store  AlbumStore
	logger zerolog.Logger
}

// NewAlbumsHandler creates a new AlbumsHandler.
func NewAlbumsHandler(store AlbumStore, logger zerolog.Logger) *AlbumsHandler {
	return &AlbumsHandler{
		store:  store,
		logger: logger.With().Str("component", "albums_handler").Logger(),
	}
}

// RegisterRoutes registers album routes under a brand.
func (h *AlbumsHandler) RegisterRoutes(r *gin.RouterGroup) {
	albums := r.Group("/brands/:id/albums")
	{
		albums.GET("", h.List)
		albums.POST("", h.Create)
		albums.PUT("/:albumID", h.Update)
		albums.DELETE("/:albumID", h.Delete)
	}
	// Separate path: a static "order" segment would conflict with :albumID
	// in the route tree.
	r.PUT("/brands/:id/album-order", h.Reorder)
}

// AlbumRequest is the create/update album payload.
type AlbumRequest struct {
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description"`
	CoverPhotoID *uuid.UUID             `json:"cover_photo_id"`
	Visibility   models.AlbumVisibility `json:"visibility"`
}

// List returns a brand's albums in sort order.
// GET /api/v1/brands/:id/albums
func (h *AlbumsHandler) List(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return
	}

	albums, err := h.store.ListAlbumsByBrand(c.Request.Context(), brandID)
	if err != nil {
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to list albums")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list albums"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"albums": albums, "count": len(albums)})
}

// Create adds an album to a brand.
// POST /api/v1/brands/:id/albums
func (h *AlbumsHandler) Create(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return
	}

	var req AlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	album := models.NewAlbum(brandID, req.Title)
	album.Description = req.Description
	album.CoverPhotoID = req.CoverPhotoID
	if req.Visibility != "" {
		album.Visibility = req.Visibility
	}

	if err := h.store.CreateAlbum(c.Request.Context(), album); err != nil {
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to create album")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create album"})
		return
	}

	c.JSON(http.StatusCreated, album)
}

// Update edits an album's fields.
// PUT /api/v1/brands/:id/albums/:albumID
func (h *AlbumsHandler) Update(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	albumID, ok := parseIDParam(c, "albumID")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return
	}

	album, ok := h.brandAlbum(c, brandID, albumID)
	if !ok {
		return
	}

	var req AlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	album.Title = req.Title
	album.Description = req.Description
	album.CoverPhotoID = req.CoverPhotoID
	if req.Visibility != "" {
		album.Visibility = req.Visibility
	}

	if err := h.store.UpdateAlbum(c.Request.Context(), album); err != nil {
		h.logger.Error().Err(err).Str("album_id", albumID.String()).Msg("failed to update album")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update album"})
		return
	}

	c.JSON(http.StatusOK, album)
}

// ReorderRequest is the album ordering payload.
type ReorderRequest struct {
	AlbumIDs []uuid.UUID `json:"album_ids" binding:"required"`
}

// Reorder sets the display order of a brand's albums.
// PUT /api/v1/brands/:id/album-order
func (h *AlbumsHandler) Reorder(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "album_ids is required"})
		return
	}

	if err := h.store.ReorderAlbums(c.Request.Context(), brandID, req.AlbumIDs); err != nil {
		h.logger.Error().Err(err).Str("brand_id", brandID.String()).Msg("failed to reorder albums")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder albums"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

// Delete removes an empty album.
// DELETE /api/v1/brands/:id/albums/:albumID
func (h *AlbumsHandler) Delete(c *gin.Context) {
	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	albumID, ok := parseIDParam(c, "albumID")
	if !ok {
		return
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return
	}
	if _, ok := h.brandAlbum(c, brandID, albumID); !ok {
		return
	}

	if err := h.store.DeleteAlbum(c.Request.Context(), albumID); err != nil {
		h.logger.Warn().Err(err).Str("album_id", albumID.String()).Msg("failed to delete album")
		c.JSON(http.StatusConflict, gin.H{"error": "album is not empty or could not be deleted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// brandAlbum loads an album and verifies it belongs to the brand.
func (h *AlbumsHandler) brandAlbum(c *gin.Context, brandID, albumID uuid.UUID) (*models.Album, bool) {
	album, err := h.store.GetAlbumByID(c.Request.Context(), albumID)
	if err != nil {
		h.logger.Error().Err(err).Str("album_id", albumID.String()).Msg("failed to get album")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get album"})
		return nil, false
	}
	if album == nil || album.BrandID != brandID {
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		return nil, false
	}
	return album, true
}
