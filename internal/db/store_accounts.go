package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

// CreateAccount inserts a credential record into the authentication store.
// Returns ErrDuplicateEmail if the email is already registered.
func (db *DB) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccountByEmail returns an account by email (case-insensitive), or nil if
// not found.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

// GetAccountByID returns an account by id, or nil if not found.
func (db *DB) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// UpdateAccountPassword replaces an account's password hash.
func (db *DB) UpdateAccountPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account not found")
	}
	return nil
}
