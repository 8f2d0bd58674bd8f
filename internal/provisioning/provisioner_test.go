package provisioning

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/models"
)

type fakeStore struct {
	brands    map[string]*models.Brand     // by subdomain
	profiles  map[string]*models.Superuser // by email
	accounts  map[string]*models.Account   // by email
	audits    []*models.AdminAuditLog
	owners    []*models.Superuser
	calls     int
	commitErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		brands:   make(map[string]*models.Brand),
		profiles: make(map[string]*models.Superuser),
		accounts: make(map[string]*models.Account),
	}
}

func (f *fakeStore) GetBrandBySubdomain(_ context.Context, subdomain string) (*models.Brand, error) {
	f.calls++
	return f.brands[strings.ToLower(subdomain)], nil
}

func (f *fakeStore) GetSuperuserByEmail(_ context.Context, email string) (*models.Superuser, error) {
	f.calls++
	return f.profiles[email], nil
}

func (f *fakeStore) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	f.calls++
	return f.accounts[email], nil
}

func (f *fakeStore) CreateAccount(_ context.Context, account *models.Account) error {
	f.calls++
	if _, exists := f.accounts[account.Email]; exists {
		return db.ErrDuplicateEmail
	}
	f.accounts[account.Email] = account
	return nil
}

func (f *fakeStore) CreateBrandWithOwner(_ context.Context, brand *models.Brand, owner *models.Superuser) error {
	f.calls++
	if f.commitErr != nil {
		return f.commitErr
	}
	if _, exists := f.brands[strings.ToLower(brand.Subdomain)]; exists {
		return db.ErrDuplicateSubdomain
	}
	f.brands[strings.ToLower(brand.Subdomain)] = brand
	// Mirrors the real upsert: an existing profile row gains the brand id
	// unless it is already present; a fresh row stores the caller's brand
	// list exactly as passed, with no append.
	if existing, ok := f.profiles[owner.Email]; ok {
		if !existing.OwnsBrand(brand.ID) {
			existing.BrandIDs = append(existing.BrandIDs, brand.ID)
		}
	} else {
		f.profiles[owner.Email] = owner
	}
	f.owners = append(f.owners, owner)
	return nil
}

func (f *fakeStore) CreateAdminAuditLog(_ context.Context, log *models.AdminAuditLog) error {
	f.audits = append(f.audits, log)
	return nil
}

func newTestProvisioner(store Store) *Provisioner {
	return NewProvisioner(store, zerolog.Nop())
}

func validRequest() ProvisionRequest {
	return ProvisionRequest{
		Name:      "Acme Photo",
		Subdomain: "acme-photo",
		Email:     "owner@acme.test",
	}
}

func TestProvisionNewIdentity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	result, err := p.Provision(ctx, uuid.New(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, IdentityNew, result.Outcome)
	assert.GreaterOrEqual(t, len(result.TemporaryPassword), 16)

	brand := store.brands["acme-photo"]
	require.NotNil(t, brand)
	assert.Equal(t, result.BrandID, brand.ID)
	assert.Equal(t, "acme-photo", brand.Slug)
	assert.Equal(t, "Acme Photo", brand.Name)
	assert.Equal(t, models.BrandStatusActive, brand.Status)
	assert.Equal(t, result.SuperuserID, brand.SuperuserID)

	account := store.accounts["owner@acme.test"]
	require.NotNil(t, account)
	assert.Equal(t, result.SuperuserID, account.ID)
	assert.NotContains(t, account.PasswordHash, result.TemporaryPassword)

	profile := store.profiles["owner@acme.test"]
	require.NotNil(t, profile)
	assert.Contains(t, profile.BrandIDs, brand.ID)
}

func TestProvisionLinksBrandOnFreshProfile(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	result, err := p.Provision(ctx, uuid.New(), validRequest())
	require.NoError(t, err)

	// The profile column rejects NULL, so the committed brand list must be a
	// real slice carrying the new brand, not left nil by the identity path.
	profile := store.profiles["owner@acme.test"]
	require.NotNil(t, profile)
	require.NotNil(t, profile.BrandIDs)
	assert.Equal(t, []uuid.UUID{result.BrandID}, profile.BrandIDs)
}

func TestProvisionLinksBrandOnRecoveredOrphan(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	orphan := models.NewAccount("orphan@acme.test", "$2a$10$existinghash")
	store.accounts[orphan.Email] = orphan

	p := newTestProvisioner(store)
	req := validRequest()
	req.Email = orphan.Email

	result, err := p.Provision(ctx, uuid.New(), req)
	require.NoError(t, err)

	profile := store.profiles[orphan.Email]
	require.NotNil(t, profile)
	assert.Equal(t, []uuid.UUID{result.BrandID}, profile.BrandIDs)
}

func TestProvisionReusesExistingIdentity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	first, err := p.Provision(ctx, uuid.New(), validRequest())
	require.NoError(t, err)

	second, err := p.Provision(ctx, uuid.New(), ProvisionRequest{
		Name:      "Acme Weddings",
		Subdomain: "acme-weddings",
		Email:     "owner@acme.test",
	})
	require.NoError(t, err)

	assert.Equal(t, IdentityReused, second.Outcome)
	assert.Empty(t, second.TemporaryPassword)
	assert.Equal(t, first.SuperuserID, second.SuperuserID)

	profile := store.profiles["owner@acme.test"]
	require.NotNil(t, profile)
	assert.Contains(t, profile.BrandIDs, first.BrandID)
	assert.Contains(t, profile.BrandIDs, second.BrandID)
}

func TestProvisionDuplicateSubdomain(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	_, err := p.Provision(ctx, uuid.New(), validRequest())
	require.NoError(t, err)

	accountsBefore := len(store.accounts)
	brandsBefore := len(store.brands)

	// Same subdomain with a different email still conflicts.
	req := validRequest()
	req.Email = "other@acme.test"
	_, err = p.Provision(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrSubdomainTaken)

	assert.Len(t, store.accounts, accountsBefore)
	assert.Len(t, store.brands, brandsBefore)
}

func TestProvisionRecoversOrphanAccount(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	// An account left behind by a partially failed run: credential exists,
	// profile does not.
	orphan := models.NewAccount("orphan@acme.test", "$2a$10$existinghash")
	store.accounts[orphan.Email] = orphan

	p := newTestProvisioner(store)
	req := validRequest()
	req.Email = orphan.Email

	result, err := p.Provision(ctx, uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, IdentityRecoveredOrphan, result.Outcome)
	assert.Empty(t, result.TemporaryPassword)
	assert.Equal(t, orphan.ID, result.SuperuserID)

	profile := store.profiles[orphan.Email]
	require.NotNil(t, profile)
	assert.Equal(t, orphan.ID, profile.ID)
	assert.Contains(t, profile.BrandIDs, result.BrandID)

	// The existing credential is untouched.
	assert.Equal(t, "$2a$10$existinghash", store.accounts[orphan.Email].PasswordHash)
}

func TestProvisionRepairsProfileWithoutCredential(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	profile := models.NewSuperuser(uuid.New(), "ghost@acme.test")
	store.profiles[profile.Email] = profile

	p := newTestProvisioner(store)
	req := validRequest()
	req.Email = profile.Email

	result, err := p.Provision(ctx, uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, IdentityRecoveredOrphan, result.Outcome)
	assert.GreaterOrEqual(t, len(result.TemporaryPassword), 16)
	assert.Equal(t, profile.ID, result.SuperuserID)

	account := store.accounts[profile.Email]
	require.NotNil(t, account)
	assert.Equal(t, profile.ID, account.ID)
}

func TestProvisionSequentialSameSubdomain(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	first, err := p.Provision(ctx, uuid.New(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, first.TemporaryPassword)

	_, err = p.Provision(ctx, uuid.New(), validRequest())
	assert.ErrorIs(t, err, ErrSubdomainTaken)
}

func TestProvisionCommitRace(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	// Pre-check passes but the transactional insert loses to a concurrent
	// run on the unique index.
	store.commitErr = db.ErrDuplicateSubdomain
	p := newTestProvisioner(store)

	_, err := p.Provision(ctx, uuid.New(), validRequest())
	assert.ErrorIs(t, err, ErrSubdomainTaken)
}

func TestProvisionValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ProvisionRequest)
	}{
		{"empty name", func(r *ProvisionRequest) { r.Name = "  " }},
		{"empty subdomain", func(r *ProvisionRequest) { r.Subdomain = "" }},
		{"invalid subdomain characters", func(r *ProvisionRequest) { r.Subdomain = "Acme Photo!" }},
		{"uppercase subdomain", func(r *ProvisionRequest) { r.Subdomain = "AcmePhoto" }},
		{"empty email", func(r *ProvisionRequest) { r.Email = "" }},
		{"malformed email", func(r *ProvisionRequest) { r.Email = "not-an-email" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			p := newTestProvisioner(store)

			req := validRequest()
			tc.mutate(&req)

			_, err := p.Provision(ctx, uuid.New(), req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Zero(t, store.calls, "validation must fail before any store access")
		})
	}
}

func TestProvisionWritesAuditEntry(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := newTestProvisioner(store)

	actor := uuid.New()
	result, err := p.Provision(ctx, actor, validRequest())
	require.NoError(t, err)

	require.Len(t, store.audits, 1)
	entry := store.audits[0]
	assert.Equal(t, actor, entry.SuperuserID)
	assert.Equal(t, models.ActionProvisionBrand, entry.Action)
	require.NotNil(t, entry.BrandID)
	assert.Equal(t, result.BrandID, *entry.BrandID)
	assert.NotContains(t, string(entry.Details), result.TemporaryPassword)
}
