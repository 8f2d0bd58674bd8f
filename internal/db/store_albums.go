package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

// CreateAlbum inserts an album record.
func (db *DB) CreateAlbum(ctx context.Context, album *models.Album) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO albums (id, brand_id, title, description, cover_photo_id,
			sort_order, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		album.ID, album.BrandID, album.Title, album.Description, album.CoverPhotoID,
		album.SortOrder, string(album.Visibility), album.CreatedAt, album.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create album: %w", err)
	}
	return nil
}

// GetAlbumByID returns an album by id, or nil if not found.
func (db *DB) GetAlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	var a models.Album
	var visibilityStr string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, brand_id, title, description, cover_photo_id, sort_order,
			visibility, created_at, updated_at
		FROM albums
		WHERE id = $1
	`, id).Scan(
		&a.ID, &a.BrandID, &a.Title, &a.Description, &a.CoverPhotoID,
		&a.SortOrder, &visibilityStr, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get album: %w", err)
	}
	a.Visibility = models.AlbumVisibility(visibilityStr)
	return &a, nil
}

// ListAlbumsByBrand returns a brand's albums in display order.
func (db *DB) ListAlbumsByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Album, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, brand_id, title, description, cover_photo_id, sort_order,
			visibility, created_at, updated_at
		FROM albums
		WHERE brand_id = $1
		ORDER BY sort_order, created_at
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		var a models.Album
		var visibilityStr string
		err := rows.Scan(
			&a.ID, &a.BrandID, &a.Title, &a.Description, &a.CoverPhotoID,
			&a.SortOrder, &visibilityStr, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		a.Visibility = models.AlbumVisibility(visibilityStr)
		albums = append(albums, &a)
	}
	return albums, nil
}

// UpdateAlbum updates an album's editable fields.
func (db *DB) UpdateAlbum(ctx context.Context, album *models.Album) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE albums SET title = $1, description = $2, cover_photo_id = $3,
			visibility = $4, updated_at = NOW()
		WHERE id = $5
	`, album.Title, album.Description, album.CoverPhotoID, string(album.Visibility), album.ID)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("album not found")
	}
	return nil
}

// ReorderAlbums applies the given ordering of album ids within one brand.
func (db *DB) ReorderAlbums(ctx context.Context, brandID uuid.UUID, orderedIDs []uuid.UUID) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		for i, id := range orderedIDs {
			result, err := tx.Exec(ctx, `
				UPDATE albums SET sort_order = $1, updated_at = NOW()
				WHERE id = $2 AND brand_id = $3
			`, i, id, brandID)
			if err != nil {
				return fmt.Errorf("reorder album %s: %w", id, err)
			}
			if result.RowsAffected() == 0 {
				return fmt.Errorf("album %s not found in brand", id)
			}
		}
		return nil
	})
}

// DeleteAlbum removes an album. Fails if the album still has photos.
func (db *DB) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	var photoCount int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM photos WHERE album_id = $1`, id).Scan(&photoCount)
	if err != nil {
		return fmt.Errorf("count album photos: %w", err)
	}
	if photoCount > 0 {
		return fmt.Errorf("album has %d photos, delete them first", photoCount)
	}

	result, err := db.Pool.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("album not found")
	}
	return nil
}
