package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/framehaus/framehaus/internal/storage"
)

// extByContentType maps accepted upload types to object key extensions.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// PhotoStore defines the interface for photo persistence operations.
type PhotoStore interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListPhotosByAlbum(ctx context.Context, albumID uuid.UUID) ([]*models.Photo, error)
	UpdatePhotoCaption(ctx context.Context, id uuid.UUID, caption string) error
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	EnqueueThumbJob(ctx context.Context, job *models.ThumbJob) error
	GetAlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error)
	GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error)
}

// ObjectStorage is the slice of object storage the photo handlers use.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// PhotosHandler handles photo upload and management endpoints. Uploads go
// directly from the browser to object storage via presigned URLs; the server
// only records metadata and queues thumbnail work.
type PhotosHandler struct {
	store   PhotoStore
	objects ObjectStorage
	logger  zerolog.Logger
}

// NewPhotosHandler creates a new PhotosHandler.
func NewPhotosHandler(store PhotoStore, objects ObjectStorage, logger zerolog.Logger) *PhotosHandler {
	return &PhotosHandler{
		store:   store,
		objects: objects,
		logger:  logger.With().Str("component", "photos_handler").Logger(),
	}
}

// RegisterRoutes registers photo routes under a brand's albums.
func (h *PhotosHandler) RegisterRoutes(r *gin.RouterGroup) {
	photos := r.Group("/brands/:id/albums/:albumID/photos")
	{
		photos.GET("", h.List)
		photos.POST("", h.StartUpload)
		photos.POST("/:photoID/confirm", h.ConfirmUpload)
		photos.PUT("/:photoID/caption", h.SetCaption)
		photos.DELETE("/:photoID", h.Delete)
	}
}

// List returns an album's photos.
// GET /api/v1/brands/:id/albums/:albumID/photos
func (h *PhotosHandler) List(c *gin.Context) {
	_, albumID, ok := h.albumScope(c)
	if !ok {
		return
	}

	photos, err := h.store.ListPhotosByAlbum(c.Request.Context(), albumID)
	if err != nil {
		h.logger.Error().Err(err).Str("album_id", albumID.String()).Msg("failed to list photos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos, "count": len(photos)})
}

// StartUploadRequest describes the file about to be uploaded.
type StartUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// StartUpload records a pending photo and returns a presigned PUT URL for
// the browser to upload the original directly to object storage.
// POST /api/v1/brands/:id/albums/:albumID/photos
func (h *PhotosHandler) StartUpload(c *gin.Context) {
	brandID, albumID, ok := h.albumScope(c)
	if !ok {
		return
	}

	var req StartUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_type is required"})
		return
	}

	ext, ok := extByContentType[req.ContentType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type"})
		return
	}

	photo := models.NewPhoto(brandID, albumID, "", req.ContentType)
	photo.ObjectKey = storage.PhotoKey(brandID, photo.ID, ext)

	uploadURL, err := h.objects.PresignUpload(c.Request.Context(), photo.ObjectKey, req.ContentType)
	if err != nil {
		h.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to presign upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare upload"})
		return
	}

	if err := h.store.CreatePhoto(c.Request.Context(), photo); err != nil {
		h.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to create photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photo": photo, "upload_url": uploadURL})
}

// ConfirmUpload marks the upload complete and queues thumbnail generation.
// POST /api/v1/brands/:id/albums/:albumID/photos/:photoID/confirm
func (h *PhotosHandler) ConfirmUpload(c *gin.Context) {
	brandID, albumID, ok := h.albumScope(c)
	if !ok {
		return
	}
	photo, ok := h.albumPhoto(c, brandID, albumID)
	if !ok {
		return
	}

	job := models.NewThumbJob(photo.ID)
	if err := h.store.EnqueueThumbJob(c.Request.Context(), job); err != nil {
		h.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to enqueue thumb job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue thumbnail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued", "job_id": job.ID})
}

// SetCaptionRequest is the caption payload.
type SetCaptionRequest struct {
	Caption string `json:"caption"`
}

// SetCaption updates a photo's caption.
// PUT /api/v1/brands/:id/albums/:albumID/photos/:photoID/caption
func (h *PhotosHandler) SetCaption(c *gin.Context) {
	brandID, albumID, ok := h.albumScope(c)
	if !ok {
		return
	}
	photo, ok := h.albumPhoto(c, brandID, albumID)
	if !ok {
		return
	}

	var req SetCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.store.UpdatePhotoCaption(c.Request.Context(), photo.ID, req.Caption); err != nil {
		h.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to update caption")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update caption"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes a photo record and its stored objects.
// DELETE /api/v1/brands/:id/albums/:albumID/photos/:photoID
func (h *PhotosHandler) Delete(c *gin.Context) {
	brandID, albumID, ok := h.albumScope(c)
	if !ok {
		return
	}
	photo, ok := h.albumPhoto(c, brandID, albumID)
	if !ok {
		return
	}

	if err := h.store.DeletePhoto(c.Request.Context(), photo.ID); err != nil {
		h.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to delete photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete photo"})
		return
	}

	// Object deletes are best-effort; a leaked object is preferable to a
	// dangling database row.
	if photo.ObjectKey != "" {
		if err := h.objects.Delete(c.Request.Context(), photo.ObjectKey); err != nil {
			h.logger.Warn().Err(err).Str("key", photo.ObjectKey).Msg("failed to delete original")
		}
	}
	if photo.ThumbKey != "" {
		if err := h.objects.Delete(c.Request.Context(), photo.ThumbKey); err != nil {
			h.logger.Warn().Err(err).Str("key", photo.ThumbKey).Msg("failed to delete thumbnail")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// albumScope authorizes the caller for the brand and verifies the album
// belongs to it.
func (h *PhotosHandler) albumScope(c *gin.Context) (brandID, albumID uuid.UUID, ok bool) {
	brandID, idOK := parseIDParam(c, "id")
	if !idOK {
		return uuid.Nil, uuid.Nil, false
	}
	albumID, idOK = parseIDParam(c, "albumID")
	if !idOK {
		return uuid.Nil, uuid.Nil, false
	}
	if authorizeBrand(c, h.store, brandID) == nil {
		return uuid.Nil, uuid.Nil, false
	}

	album, err := h.store.GetAlbumByID(c.Request.Context(), albumID)
	if err != nil {
		h.logger.Error().Err(err).Str("album_id", albumID.String()).Msg("failed to get album")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get album"})
		return uuid.Nil, uuid.Nil, false
	}
	if album == nil || album.BrandID != brandID {
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		return uuid.Nil, uuid.Nil, false
	}
	return brandID, albumID, true
}

// albumPhoto loads a photo and verifies it belongs to the album.
func (h *PhotosHandler) albumPhoto(c *gin.Context, brandID, albumID uuid.UUID) (*models.Photo, bool) {
	photoID, ok := parseIDParam(c, "photoID")
	if !ok {
		return nil, false
	}

	photo, err := h.store.GetPhotoByID(c.Request.Context(), photoID)
	if err != nil {
		h.logger.Error().Err(err).Str("photo_id", photoID.String()).Msg("failed to get photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get photo"})
		return nil, false
	}
	if photo == nil || photo.AlbumID != albumID || photo.BrandID != brandID {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return nil, false
	}
	return photo, true
}
