package models

import (
	"time"

	"github.com/google/uuid"
)

// AlbumVisibility defines whether an album appears on the public gallery.
type AlbumVisibility string

const (
	// AlbumVisible means the album is shown on the public gallery.
	AlbumVisible AlbumVisibility = "public"
	// AlbumHidden means the album is only visible in the admin console.
	AlbumHidden AlbumVisibility = "hidden"
)

// Album represents a photo album within a brand's gallery.
type Album struct {
	ID           uuid.UUID       `json:"id"`
	BrandID      uuid.UUID       `json:"brand_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	CoverPhotoID *uuid.UUID      `json:"cover_photo_id,omitempty"`
	SortOrder    int             `json:"sort_order"`
	Visibility   AlbumVisibility `json:"visibility"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewAlbum creates a visible Album for the given brand.
func NewAlbum(brandID uuid.UUID, title string) *Album {
	now := time.Now()
	return &Album{
		ID:         uuid.New(),
		BrandID:    brandID,
		Title:      title,
		Visibility: AlbumVisible,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
