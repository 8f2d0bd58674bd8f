package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

const brandColumns = `
	id, name, slug, subdomain, owner_email, phone, address, status,
	primary_color, secondary_color, sub_status, sub_billing_ref, sub_period_end,
	seo_title, seo_description, superuser_id, created_at, updated_at
`

// rowScanner is any pgx row source (pgx.Row, pgx.Rows).
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrand(row rowScanner) (*models.Brand, error) {
	var b models.Brand
	var statusStr, subStatusStr string
	err := row.Scan(
		&b.ID, &b.Name, &b.Slug, &b.Subdomain, &b.OwnerEmail, &b.Phone,
		&b.Address, &statusStr, &b.Branding.PrimaryColor, &b.Branding.SecondaryColor,
		&subStatusStr, &b.Subscription.BillingRef, &b.Subscription.PeriodEnd,
		&b.SEO.Title, &b.SEO.Description, &b.SuperuserID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = models.BrandStatus(statusStr)
	b.Subscription.Status = models.SubscriptionStatus(subStatusStr)
	return &b, nil
}

// CreateBrandWithOwner atomically creates a brand and creates-or-extends the
// owning superuser profile in a single transaction. The unique index on
// subdomain is the backstop for concurrent provisioning of the same
// subdomain; a violation surfaces as ErrDuplicateSubdomain.
func (db *DB) CreateBrandWithOwner(ctx context.Context, brand *models.Brand, owner *models.Superuser) error {
	err := db.ExecTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO superusers (id, email, brand_ids, is_superadmin, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				brand_ids = CASE
					WHEN $7 = ANY(superusers.brand_ids) THEN superusers.brand_ids
					ELSE array_append(superusers.brand_ids, $7)
				END,
				updated_at = NOW()
		`,
			owner.ID, owner.Email, owner.BrandIDs, owner.IsSuperadmin,
			owner.CreatedAt, owner.UpdatedAt, brand.ID,
		)
		if err != nil {
			return fmt.Errorf("upsert superuser profile: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO brands (`+brandColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			brand.ID, brand.Name, brand.Slug, brand.Subdomain, brand.OwnerEmail,
			brand.Phone, brand.Address, string(brand.Status),
			brand.Branding.PrimaryColor, brand.Branding.SecondaryColor,
			string(brand.Subscription.Status), brand.Subscription.BillingRef,
			brand.Subscription.PeriodEnd, brand.SEO.Title, brand.SEO.Description,
			brand.SuperuserID, brand.CreatedAt, brand.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateSubdomain
			}
			return fmt.Errorf("insert brand: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubdomain) {
			return err
		}
		return fmt.Errorf("create brand with owner: %w", err)
	}
	return nil
}

// GetBrandByID returns a brand by id, or nil if not found.
func (db *DB) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id)
	brand, err := scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return brand, nil
}

// GetBrandBySubdomain returns a brand by subdomain (case-insensitive), or nil
// if not found.
func (db *DB) GetBrandBySubdomain(ctx context.Context, subdomain string) (*models.Brand, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE LOWER(subdomain) = LOWER($1)`, subdomain)
	brand, err := scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand by subdomain: %w", err)
	}
	return brand, nil
}

// GetBrandBySlug returns a brand by slug, or nil if not found.
func (db *DB) GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE slug = $1`, slug)
	brand, err := scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand by slug: %w", err)
	}
	return brand, nil
}

// ListBrands returns all brands ordered by name.
func (db *DB) ListBrands(ctx context.Context) ([]*models.Brand, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	return brands, nil
}

// ListBrandsBySuperuser returns the brands owned by the given superuser.
func (db *DB) ListBrandsBySuperuser(ctx context.Context, superuserID uuid.UUID) ([]*models.Brand, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+brandColumns+` FROM brands
		WHERE id = ANY(SELECT UNNEST(brand_ids) FROM superusers WHERE id = $1)
		ORDER BY name
	`, superuserID)
	if err != nil {
		return nil, fmt.Errorf("list brands by superuser: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	return brands, nil
}

// UpdateBrand updates the mutable fields of a brand. Subdomain and slug are
// immutable after provisioning and are not written here.
func (db *DB) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE brands SET
			name = $1, owner_email = $2, phone = $3, address = $4,
			primary_color = $5, secondary_color = $6,
			seo_title = $7, seo_description = $8,
			sub_billing_ref = $9, updated_at = NOW()
		WHERE id = $10
	`,
		brand.Name, brand.OwnerEmail, brand.Phone, brand.Address,
		brand.Branding.PrimaryColor, brand.Branding.SecondaryColor,
		brand.SEO.Title, brand.SEO.Description,
		brand.Subscription.BillingRef, brand.ID,
	)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("brand not found")
	}
	return nil
}

// SetBrandStatus updates a brand's lifecycle status.
func (db *DB) SetBrandStatus(ctx context.Context, id uuid.UUID, status models.BrandStatus) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE brands SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("set brand status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("brand not found")
	}
	return nil
}

// ExtendBrandSubscription marks a subscription active with a new period end.
func (db *DB) ExtendBrandSubscription(ctx context.Context, id uuid.UUID, periodEnd time.Time) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE brands SET sub_status = $1, sub_period_end = $2, updated_at = NOW()
		WHERE id = $3
	`, string(models.SubscriptionActive), periodEnd, id)
	if err != nil {
		return fmt.Errorf("extend brand subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("brand not found")
	}
	return nil
}

// ListExpiredActiveBrands returns active brands whose subscription period end
// is before the given instant.
func (db *DB) ListExpiredActiveBrands(ctx context.Context, now time.Time) ([]*models.Brand, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+brandColumns+` FROM brands
		WHERE status = $1 AND sub_period_end < $2
		ORDER BY sub_period_end
	`, string(models.BrandStatusActive), now)
	if err != nil {
		return nil, fmt.Errorf("list expired brands: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	return brands, nil
}

// SuspendBrandForBilling suspends a brand and marks its subscription past due.
func (db *DB) SuspendBrandForBilling(ctx context.Context, id uuid.UUID) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE brands SET status = $1, sub_status = $2, updated_at = NOW()
		WHERE id = $3
	`, string(models.BrandStatusSuspended), string(models.SubscriptionPastDue), id)
	if err != nil {
		return fmt.Errorf("suspend brand for billing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("brand not found")
	}
	return nil
}
