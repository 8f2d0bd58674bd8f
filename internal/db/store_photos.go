package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

const photoColumns = `
	id, album_id, brand_id, object_key, thumb_key, caption, width, height,
	content_type, thumb_status, created_at, updated_at
`

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var p models.Photo
	var thumbStatusStr string
	err := row.Scan(
		&p.ID, &p.AlbumID, &p.BrandID, &p.ObjectKey, &p.ThumbKey, &p.Caption,
		&p.Width, &p.Height, &p.ContentType, &thumbStatusStr, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ThumbStatus = models.ThumbStatus(thumbStatusStr)
	return &p, nil
}

// CreatePhoto inserts a photo record.
func (db *DB) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO photos (`+photoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		photo.ID, photo.AlbumID, photo.BrandID, photo.ObjectKey, photo.ThumbKey,
		photo.Caption, photo.Width, photo.Height, photo.ContentType,
		string(photo.ThumbStatus), photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

// GetPhotoByID returns a photo by id, or nil if not found.
func (db *DB) GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

// ListPhotosByAlbum returns an album's photos, newest first.
func (db *DB) ListPhotosByAlbum(ctx context.Context, albumID uuid.UUID) ([]*models.Photo, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE album_id = $1
		ORDER BY created_at DESC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// UpdatePhotoCaption updates a photo's caption.
func (db *DB) UpdatePhotoCaption(ctx context.Context, id uuid.UUID, caption string) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE photos SET caption = $1, updated_at = NOW() WHERE id = $2
	`, caption, id)
	if err != nil {
		return fmt.Errorf("update photo caption: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// SetPhotoThumb records a generated thumbnail and the decoded dimensions.
func (db *DB) SetPhotoThumb(ctx context.Context, id uuid.UUID, thumbKey string, width, height int) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE photos SET thumb_key = $1, width = $2, height = $3,
			thumb_status = $4, updated_at = NOW()
		WHERE id = $5
	`, thumbKey, width, height, string(models.ThumbReady), id)
	if err != nil {
		return fmt.Errorf("set photo thumb: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// SetPhotoThumbStatus updates only the thumbnail status.
func (db *DB) SetPhotoThumbStatus(ctx context.Context, id uuid.UUID, status models.ThumbStatus) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE photos SET thumb_status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("set photo thumb status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// DeletePhoto removes a photo record and any queued thumbnail jobs for it.
func (db *DB) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM thumb_jobs WHERE photo_id = $1`, id); err != nil {
			return fmt.Errorf("delete photo thumb jobs: %w", err)
		}
		result, err := tx.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete photo: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("photo not found")
		}
		return nil
	})
}
