package models

import (
	"time"

	"github.com/google/uuid"
)

// ThumbStatus tracks thumbnail generation for a photo.
type ThumbStatus string

const (
	// ThumbPending means the thumbnail has not been generated yet.
	ThumbPending ThumbStatus = "pending"
	// ThumbReady means the thumbnail exists in object storage.
	ThumbReady ThumbStatus = "ready"
	// ThumbFailed means generation exhausted its retries.
	ThumbFailed ThumbStatus = "failed"
)

// Photo represents a single uploaded image within an album.
type Photo struct {
	ID          uuid.UUID   `json:"id"`
	AlbumID     uuid.UUID   `json:"album_id"`
	BrandID     uuid.UUID   `json:"brand_id"`
	ObjectKey   string      `json:"object_key"`
	ThumbKey    string      `json:"thumb_key,omitempty"`
	Caption     string      `json:"caption,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	ContentType string      `json:"content_type"`
	ThumbStatus ThumbStatus `json:"thumb_status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewPhoto creates a Photo with thumbnail generation pending.
func NewPhoto(brandID, albumID uuid.UUID, objectKey, contentType string) *Photo {
	now := time.Now()
	return &Photo{
		ID:          uuid.New(),
		AlbumID:     albumID,
		BrandID:     brandID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		ThumbStatus: ThumbPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
