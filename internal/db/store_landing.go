package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

// GetLandingDraft returns a brand's landing draft, or nil if none exists.
func (db *DB) GetLandingDraft(ctx context.Context, brandID uuid.UUID) (*models.LandingDraft, error) {
	var draft models.LandingDraft
	var sectionsBytes []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT brand_id, sections, updated_at
		FROM landing_drafts
		WHERE brand_id = $1
	`, brandID).Scan(&draft.BrandID, &sectionsBytes, &draft.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get landing draft: %w", err)
	}
	if err := json.Unmarshal(sectionsBytes, &draft.Sections); err != nil {
		return nil, fmt.Errorf("decode draft sections: %w", err)
	}
	return &draft, nil
}

// UpsertLandingDraft creates or replaces a brand's landing draft.
func (db *DB) UpsertLandingDraft(ctx context.Context, draft *models.LandingDraft) error {
	sectionsBytes, err := json.Marshal(draft.Sections)
	if err != nil {
		return fmt.Errorf("encode draft sections: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO landing_drafts (brand_id, sections, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (brand_id) DO UPDATE SET sections = $2, updated_at = NOW()
	`, draft.BrandID, sectionsBytes)
	if err != nil {
		return fmt.Errorf("upsert landing draft: %w", err)
	}
	return nil
}

// PublishLandingSnapshot copies the current draft into a new immutable
// snapshot with the next version number, in one transaction. Returns the
// published snapshot.
func (db *DB) PublishLandingSnapshot(ctx context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error) {
	var snapshot *models.LandingSnapshot
	err := db.ExecTx(ctx, func(tx pgx.Tx) error {
		var sectionsBytes []byte
		err := tx.QueryRow(ctx, `
			SELECT sections FROM landing_drafts WHERE brand_id = $1 FOR UPDATE
		`, brandID).Scan(&sectionsBytes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoDraft
			}
			return fmt.Errorf("read draft: %w", err)
		}

		var version int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1 FROM landing_snapshots WHERE brand_id = $1
		`, brandID).Scan(&version)
		if err != nil {
			return fmt.Errorf("next snapshot version: %w", err)
		}

		var s models.LandingSnapshot
		err = tx.QueryRow(ctx, `
			INSERT INTO landing_snapshots (brand_id, version, sections, published_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING brand_id, version, published_at
		`, brandID, version, sectionsBytes).Scan(&s.BrandID, &s.Version, &s.PublishedAt)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		if err := json.Unmarshal(sectionsBytes, &s.Sections); err != nil {
			return fmt.Errorf("decode snapshot sections: %w", err)
		}
		snapshot = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetLatestLandingSnapshot returns the newest published snapshot for a brand,
// or nil if nothing has been published.
func (db *DB) GetLatestLandingSnapshot(ctx context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error) {
	var s models.LandingSnapshot
	var sectionsBytes []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT brand_id, version, sections, published_at
		FROM landing_snapshots
		WHERE brand_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, brandID).Scan(&s.BrandID, &s.Version, &sectionsBytes, &s.PublishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	if err := json.Unmarshal(sectionsBytes, &s.Sections); err != nil {
		return nil, fmt.Errorf("decode snapshot sections: %w", err)
	}
	return &s, nil
}
