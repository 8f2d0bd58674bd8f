// Package landing manages brand landing pages: a mutable draft edited in the
// admin console and immutable published snapshots served to visitors.
package landing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/metrics"
	"github.com/framehaus/framehaus/internal/models"
)

// MaxSections caps the number of content blocks on a landing page.
const MaxSections = 20

// PublishedCacheTTL bounds how stale a cached published page can be if
// invalidation is missed.
const PublishedCacheTTL = 5 * time.Minute

// Landing page errors.
var (
	ErrBrandNotFound  = errors.New("brand not found")
	ErrBrandInactive  = errors.New("brand is not active")
	ErrInvalidSection = errors.New("invalid landing section")
)

// Store defines the data access the landing service needs.
type Store interface {
	GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error)
	GetLandingDraft(ctx context.Context, brandID uuid.UUID) (*models.LandingDraft, error)
	UpsertLandingDraft(ctx context.Context, draft *models.LandingDraft) error
	PublishLandingSnapshot(ctx context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error)
	GetLatestLandingSnapshot(ctx context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error)
}

// Cache is the published-page cache. The Redis implementation lives in
// cache.go; tests use an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service manages landing page drafts and published snapshots.
type Service struct {
	store  Store
	cache  Cache
	logger zerolog.Logger
}

// NewService creates a landing page service. cache may be nil, in which case
// published pages are always read from the store.
func NewService(store Store, cache Cache, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "landing").Logger(),
	}
}

func cacheKey(slug string) string {
	return "landing:" + slug
}

// GetDraft returns the brand's working draft, or an empty draft if none has
// been saved yet.
func (s *Service) GetDraft(ctx context.Context, brandID uuid.UUID) (*models.LandingDraft, error) {
	draft, err := s.store.GetLandingDraft(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return &models.LandingDraft{BrandID: brandID, Sections: []models.Section{}}, nil
	}
	return draft, nil
}

// SaveDraft validates and stores the brand's working draft. Saving a draft
// never affects what visitors see; only Publish does.
func (s *Service) SaveDraft(ctx context.Context, brandID uuid.UUID, sections []models.Section) error {
	if err := validateSections(sections); err != nil {
		return err
	}

	draft := &models.LandingDraft{
		BrandID:   brandID,
		Sections:  sections,
		UpdatedAt: time.Now(),
	}
	if err := s.store.UpsertLandingDraft(ctx, draft); err != nil {
		return err
	}

	s.logger.Debug().
		Str("brand_id", brandID.String()).
		Int("sections", len(sections)).
		Msg("landing draft saved")
	return nil
}

// Publish copies the current draft into a new immutable snapshot and
// invalidates the cached published page.
func (s *Service) Publish(ctx context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error) {
	snapshot, err := s.store.PublishLandingSnapshot(ctx, brandID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		brand, err := s.store.GetBrandByID(ctx, brandID)
		if err == nil && brand != nil {
			if err := s.cache.Delete(ctx, cacheKey(brand.Slug)); err != nil {
				s.logger.Warn().Err(err).
					Str("brand_id", brandID.String()).
					Msg("invalidate published page cache")
			}
		}
	}

	s.logger.Info().
		Str("brand_id", brandID.String()).
		Int("version", snapshot.Version).
		Msg("landing page published")
	return snapshot, nil
}

// Published returns the latest published landing page for the brand with the
// given slug. Suspended brands do not serve: the status check runs on every
// read, so the cache only spares the snapshot query, never the brand lookup.
func (s *Service) Published(ctx context.Context, slug string) (*models.LandingSnapshot, error) {
	brand, err := s.store.GetBrandBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}
	if !brand.IsActive() {
		// Drop any page cached while the brand was still active.
		if s.cache != nil {
			if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
				s.logger.Warn().Err(err).Str("slug", slug).Msg("drop cached page for inactive brand")
			}
		}
		return nil, ErrBrandInactive
	}

	if s.cache != nil {
		data, found, err := s.cache.Get(ctx, cacheKey(slug))
		if err != nil {
			s.logger.Warn().Err(err).Str("slug", slug).Msg("published page cache read")
		} else if found {
			var snapshot models.LandingSnapshot
			if err := json.Unmarshal(data, &snapshot); err == nil {
				metrics.LandingCacheHits.WithLabelValues("hit").Inc()
				return &snapshot, nil
			}
		}
		metrics.LandingCacheHits.WithLabelValues("miss").Inc()
	}

	snapshot, err := s.store.GetLatestLandingSnapshot(ctx, brand.ID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}

	if s.cache != nil {
		data, err := json.Marshal(snapshot)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey(slug), data, PublishedCacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("slug", slug).Msg("published page cache write")
			}
		}
	}

	return snapshot, nil
}

func validateSections(sections []models.Section) error {
	if len(sections) > MaxSections {
		return fmt.Errorf("%w: at most %d sections allowed", ErrInvalidSection, MaxSections)
	}
	for i, section := range sections {
		if !models.ValidSectionType(section.Type) {
			return fmt.Errorf("%w: section %d has unknown type %q", ErrInvalidSection, i, section.Type)
		}
		if len(section.Body) == 0 || !json.Valid(section.Body) {
			return fmt.Errorf("%w: section %d body is not valid JSON", ErrInvalidSection, i)
		}
	}
	return nil
}
