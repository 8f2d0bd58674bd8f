// Package provisioning implements the brand provisioning workflow: it
// validates the request, resolves or creates the owning identity, and
// commits the brand and its identity link atomically.
package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/auth"
	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/metrics"
	"github.com/framehaus/framehaus/internal/models"
	"github.com/framehaus/framehaus/internal/slug"
)

// Provisioning errors surfaced to the admin console.
var (
	// ErrInvalidArgument is returned when the request fails validation,
	// before any store access.
	ErrInvalidArgument = errors.New("invalid provisioning request")
	// ErrSubdomainTaken is returned when the subdomain is already in use.
	ErrSubdomainTaken = errors.New("subdomain is already taken")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IdentityOutcome describes how the owning identity was resolved. Downstream
// code switches on it rather than inferring state from a nullable password.
type IdentityOutcome string

const (
	// IdentityNew means a fresh account and profile were created; the result
	// carries the temporary password.
	IdentityNew IdentityOutcome = "new"
	// IdentityReused means an existing identity now owns one more brand; no
	// password is issued.
	IdentityReused IdentityOutcome = "reused"
	// IdentityRecoveredOrphan means a half-created identity from a failed
	// earlier run was repaired and linked to the new brand.
	IdentityRecoveredOrphan IdentityOutcome = "recovered_orphan"
)

// ProvisionRequest carries the inputs for one provisioning run.
type ProvisionRequest struct {
	Name      string           `json:"name"`
	Subdomain string           `json:"subdomain"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Address   string           `json:"address,omitempty"`
	Branding  *models.Branding `json:"branding,omitempty"`
}

// ProvisionResult is returned on success. TemporaryPassword is set only when
// this run created a new credential; it is never persisted or logged.
type ProvisionResult struct {
	BrandID           uuid.UUID       `json:"brand_id"`
	SuperuserID       uuid.UUID       `json:"superuser_id"`
	TemporaryPassword string          `json:"temporary_password,omitempty"`
	Outcome           IdentityOutcome `json:"identity_outcome"`
}

// Store defines the data access the provisioner needs.
type Store interface {
	GetBrandBySubdomain(ctx context.Context, subdomain string) (*models.Brand, error)
	GetSuperuserByEmail(ctx context.Context, email string) (*models.Superuser, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	CreateBrandWithOwner(ctx context.Context, brand *models.Brand, owner *models.Superuser) error
	CreateAdminAuditLog(ctx context.Context, log *models.AdminAuditLog) error
}

// Provisioner orchestrates brand creation for the superadmin console.
type Provisioner struct {
	store  Store
	logger zerolog.Logger
}

// NewProvisioner creates a new Provisioner.
func NewProvisioner(store Store, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		store:  store,
		logger: logger.With().Str("component", "provisioning").Logger(),
	}
}

// Provision creates a brand and its owning identity. The caller has already
// been authorized as a superadmin; actorID identifies them for the audit
// trail. The brand insert and the identity link are committed in one
// transaction, and the unique index on subdomain closes the window between
// the pre-check and the commit.
func (p *Provisioner) Provision(ctx context.Context, actorID uuid.UUID, req ProvisionRequest) (*ProvisionResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Subdomain = strings.TrimSpace(req.Subdomain)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := p.store.GetBrandBySubdomain(ctx, req.Subdomain)
	if err != nil {
		return nil, fmt.Errorf("check subdomain: %w", err)
	}
	if existing != nil {
		metrics.ProvisionConflicts.Inc()
		return nil, ErrSubdomainTaken
	}

	owner, password, outcome, err := p.resolveIdentity(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	brand := models.NewBrand(req.Name, slug.Normalize(req.Subdomain), req.Subdomain, req.Email, owner.ID)
	brand.Phone = req.Phone
	brand.Address = req.Address
	if req.Branding != nil {
		brand.Branding = *req.Branding
	}

	// A fresh profile row is inserted with this list verbatim, so the new
	// brand must be linked before the commit. The upsert path for an existing
	// row appends the id itself and skips duplicates.
	if !owner.OwnsBrand(brand.ID) {
		owner.BrandIDs = append(owner.BrandIDs, brand.ID)
	}

	if err := p.store.CreateBrandWithOwner(ctx, brand, owner); err != nil {
		if errors.Is(err, db.ErrDuplicateSubdomain) {
			// Lost the race to a concurrent run; same answer as the pre-check.
			metrics.ProvisionConflicts.Inc()
			return nil, ErrSubdomainTaken
		}
		return nil, fmt.Errorf("commit brand: %w", err)
	}

	p.writeAudit(ctx, actorID, brand, outcome)
	metrics.ProvisionTotal.WithLabelValues(string(outcome)).Inc()

	p.logger.Info().
		Str("brand_id", brand.ID.String()).
		Str("subdomain", brand.Subdomain).
		Str("superuser_id", owner.ID.String()).
		Str("identity_outcome", string(outcome)).
		Msg("brand provisioned")

	return &ProvisionResult{
		BrandID:           brand.ID,
		SuperuserID:       owner.ID,
		TemporaryPassword: password,
		Outcome:           outcome,
	}, nil
}

func validateRequest(req ProvisionRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if req.Subdomain == "" {
		return fmt.Errorf("%w: subdomain is required", ErrInvalidArgument)
	}
	if !slug.ValidSubdomain(req.Subdomain) {
		return fmt.Errorf("%w: subdomain must contain only lowercase letters, digits, and hyphens", ErrInvalidArgument)
	}
	if req.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidArgument)
	}
	return nil
}

// resolveIdentity finds or creates the identity that will own the brand.
// Returns the profile to commit alongside the brand, the plaintext temporary
// password when a credential was created in this call, and the outcome tag.
func (p *Provisioner) resolveIdentity(ctx context.Context, email string) (*models.Superuser, string, IdentityOutcome, error) {
	profile, err := p.store.GetSuperuserByEmail(ctx, email)
	if err != nil {
		return nil, "", "", fmt.Errorf("lookup superuser profile: %w", err)
	}

	if profile != nil {
		account, err := p.store.GetAccountByEmail(ctx, email)
		if err != nil {
			return nil, "", "", fmt.Errorf("lookup account: %w", err)
		}
		if account == nil {
			// Inverse inconsistency: a profile without a credential. Without
			// repair the owner can never log in, so issue a fresh credential
			// under the profile's id.
			password, err := auth.GenerateTemporaryPassword()
			if err != nil {
				return nil, "", "", err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, "", "", err
			}
			repaired := models.NewAccount(email, hash)
			repaired.ID = profile.ID
			if err := p.store.CreateAccount(ctx, repaired); err != nil {
				return nil, "", "", fmt.Errorf("repair missing account: %w", err)
			}
			p.logger.Warn().
				Str("superuser_id", profile.ID.String()).
				Str("email", email).
				Msg("repaired profile with missing credential")
			return profile, password, IdentityRecoveredOrphan, nil
		}
		return profile, "", IdentityReused, nil
	}

	// No profile. Create a fresh credential, recovering the orphan case where
	// an account already exists from a partially failed earlier run.
	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return nil, "", "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", "", err
	}

	account := models.NewAccount(email, hash)
	err = p.store.CreateAccount(ctx, account)
	if errors.Is(err, db.ErrDuplicateEmail) {
		orphan, lookupErr := p.store.GetAccountByEmail(ctx, email)
		if lookupErr != nil {
			return nil, "", "", fmt.Errorf("lookup orphan account: %w", lookupErr)
		}
		if orphan == nil {
			return nil, "", "", fmt.Errorf("account for %s reported duplicate but not found", email)
		}
		p.logger.Warn().
			Str("account_id", orphan.ID.String()).
			Str("email", email).
			Msg("recovered orphan account with missing profile")
		// The existing password is unknown; the owner resets it themselves.
		return models.NewSuperuser(orphan.ID, email), "", IdentityRecoveredOrphan, nil
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("create account: %w", err)
	}

	return models.NewSuperuser(account.ID, email), password, IdentityNew, nil
}

// writeAudit records the run in the admin audit trail. Audit failures are
// logged but do not fail provisioning, which has already committed.
func (p *Provisioner) writeAudit(ctx context.Context, actorID uuid.UUID, brand *models.Brand, outcome IdentityOutcome) {
	details, err := json.Marshal(map[string]string{
		"name":             brand.Name,
		"subdomain":        brand.Subdomain,
		"owner_email":      brand.OwnerEmail,
		"identity_outcome": string(outcome),
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("marshal audit details")
		return
	}

	entry := models.NewAdminAuditLog(actorID, models.ActionProvisionBrand, &brand.ID, details)
	if err := p.store.CreateAdminAuditLog(ctx, entry); err != nil {
		p.logger.Error().Err(err).
			Str("brand_id", brand.ID.String()).
			Msg("write provisioning audit entry")
	}
}
