package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

// CreateSuperuser inserts a superuser profile record.
func (db *DB) CreateSuperuser(ctx context.Context, su *models.Superuser) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO superusers (id, email, brand_ids, is_superadmin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, su.ID, su.Email, su.BrandIDs, su.IsSuperadmin, su.CreatedAt, su.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	return nil
}

// GetSuperuserByID returns a superuser profile by id, or nil if not found.
func (db *DB) GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error) {
	var su models.Superuser
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, brand_ids, is_superadmin, created_at, updated_at
		FROM superusers
		WHERE id = $1
	`, id).Scan(&su.ID, &su.Email, &su.BrandIDs, &su.IsSuperadmin, &su.CreatedAt, &su.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get superuser: %w", err)
	}
	return &su, nil
}

// GetSuperuserByEmail returns a superuser profile by email (case-insensitive),
// or nil if not found.
func (db *DB) GetSuperuserByEmail(ctx context.Context, email string) (*models.Superuser, error) {
	var su models.Superuser
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, brand_ids, is_superadmin, created_at, updated_at
		FROM superusers
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&su.ID, &su.Email, &su.BrandIDs, &su.IsSuperadmin, &su.CreatedAt, &su.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get superuser by email: %w", err)
	}
	return &su, nil
}

// ListSuperusers returns all superuser profiles ordered by email.
func (db *DB) ListSuperusers(ctx context.Context) ([]*models.Superuser, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, email, brand_ids, is_superadmin, created_at, updated_at
		FROM superusers
		ORDER BY email
	`)
	if err != nil {
		return nil, fmt.Errorf("list superusers: %w", err)
	}
	defer rows.Close()

	var sus []*models.Superuser
	for rows.Next() {
		var su models.Superuser
		err := rows.Scan(&su.ID, &su.Email, &su.BrandIDs, &su.IsSuperadmin, &su.CreatedAt, &su.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan superuser: %w", err)
		}
		sus = append(sus, &su)
	}
	return sus, nil
}

// SetSuperadmin sets or clears the superadmin flag on a profile.
func (db *DB) SetSuperadmin(ctx context.Context, id uuid.UUID, isSuperadmin bool) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE superusers SET is_superadmin = $1, updated_at = NOW() WHERE id = $2
	`, isSuperadmin, id)
	if err != nil {
		return fmt.Errorf("set superadmin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("superuser not found")
	}
	return nil
}
