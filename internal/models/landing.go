package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionType identifies the kind of content block on a landing page.
type SectionType string

const (
	// SectionHero is the top banner with headline and background image.
	SectionHero SectionType = "hero"
	// SectionText is a free-form rich text block.
	SectionText SectionType = "text"
	// SectionGallery embeds a reference to one of the brand's albums.
	SectionGallery SectionType = "gallery"
	// SectionContact is the contact details block.
	SectionContact SectionType = "contact"
)

// ValidSectionType reports whether t is a known section type.
func ValidSectionType(t SectionType) bool {
	switch t {
	case SectionHero, SectionText, SectionGallery, SectionContact:
		return true
	}
	return false
}

// Section is one ordered content block on a landing page. Body holds the
// type-specific payload as raw JSON so the editor schema can evolve without
// migrations.
type Section struct {
	Type SectionType     `json:"type"`
	Body json.RawMessage `json:"body"`
}

// LandingDraft is the mutable working copy of a brand's landing page.
type LandingDraft struct {
	BrandID   uuid.UUID `json:"brand_id"`
	Sections  []Section `json:"sections"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LandingSnapshot is an immutable published version of a landing page.
// Readers only ever see snapshots; drafts are admin-console internal.
type LandingSnapshot struct {
	BrandID     uuid.UUID `json:"brand_id"`
	Version     int       `json:"version"`
	Sections    []Section `json:"sections"`
	PublishedAt time.Time `json:"published_at"`
}
