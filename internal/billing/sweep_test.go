package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framehaus/framehaus/internal/models"
)

type fakeBillingStore struct {
	brands      map[uuid.UUID]*models.Brand
	suspendErrs map[uuid.UUID]error
	audits      []*models.AdminAuditLog
}

func newFakeBillingStore() *fakeBillingStore {
	return &fakeBillingStore{
		brands:      make(map[uuid.UUID]*models.Brand),
		suspendErrs: make(map[uuid.UUID]error),
	}
}

func (f *fakeBillingStore) addBrand(subdomain string, periodEnd time.Time) *models.Brand {
	brand := models.NewBrand(subdomain, subdomain, subdomain, "owner@"+subdomain+".test", uuid.New())
	brand.Subscription.PeriodEnd = periodEnd
	f.brands[brand.ID] = brand
	return brand
}

func (f *fakeBillingStore) ListExpiredActiveBrands(_ context.Context, now time.Time) ([]*models.Brand, error) {
	var expired []*models.Brand
	for _, b := range f.brands {
		if b.Status == models.BrandStatusActive && b.Subscription.PeriodEnd.Before(now) {
			expired = append(expired, b)
		}
	}
	return expired, nil
}

func (f *fakeBillingStore) SuspendBrandForBilling(_ context.Context, id uuid.UUID) error {
	if err := f.suspendErrs[id]; err != nil {
		return err
	}
	brand, ok := f.brands[id]
	if !ok {
		return errors.New("brand not found")
	}
	brand.Status = models.BrandStatusSuspended
	brand.Subscription.Status = models.SubscriptionPastDue
	return nil
}

func (f *fakeBillingStore) ExtendBrandSubscription(_ context.Context, id uuid.UUID, periodEnd time.Time) error {
	brand, ok := f.brands[id]
	if !ok {
		return errors.New("brand not found")
	}
	brand.Status = models.BrandStatusActive
	brand.Subscription.Status = models.SubscriptionActive
	brand.Subscription.PeriodEnd = periodEnd
	return nil
}

func (f *fakeBillingStore) CreateAdminAuditLog(_ context.Context, log *models.AdminAuditLog) error {
	f.audits = append(f.audits, log)
	return nil
}

func newTestSweeper(store Store, now time.Time) *Sweeper {
	s := NewSweeper(store, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("suspends expired brands only", func(t *testing.T) {
		store := newFakeBillingStore()
		expired := store.addBrand("expired", now.Add(-time.Hour))
		current := store.addBrand("current", now.Add(time.Hour))

		suspended, err := newTestSweeper(store, now).Sweep(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, suspended)
		assert.Equal(t, models.BrandStatusSuspended, expired.Status)
		assert.Equal(t, models.SubscriptionPastDue, expired.Subscription.Status)
		assert.Equal(t, models.BrandStatusActive, current.Status)
	})

	t.Run("already suspended brands are skipped", func(t *testing.T) {
		store := newFakeBillingStore()
		brand := store.addBrand("expired", now.Add(-time.Hour))
		brand.Status = models.BrandStatusSuspended

		suspended, err := newTestSweeper(store, now).Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, suspended)
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		store := newFakeBillingStore()
		failing := store.addBrand("failing", now.Add(-time.Hour))
		store.addBrand("other", now.Add(-time.Hour))
		store.suspendErrs[failing.ID] = errors.New("connection reset")

		suspended, err := newTestSweeper(store, now).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, suspended)
	})

	t.Run("writes system audit entry", func(t *testing.T) {
		store := newFakeBillingStore()
		brand := store.addBrand("expired", now.Add(-time.Hour))

		_, err := newTestSweeper(store, now).Sweep(ctx)
		require.NoError(t, err)

		require.Len(t, store.audits, 1)
		entry := store.audits[0]
		assert.Equal(t, uuid.Nil, entry.SuperuserID)
		assert.Equal(t, models.ActionSuspendBrand, entry.Action)
		require.NotNil(t, entry.BrandID)
		assert.Equal(t, brand.ID, *entry.BrandID)
	})
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("reactivates suspended brand", func(t *testing.T) {
		store := newFakeBillingStore()
		brand := store.addBrand("expired", now.Add(-time.Hour))
		sweeper := newTestSweeper(store, now)

		_, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, models.BrandStatusSuspended, brand.Status)

		err = sweeper.Renew(ctx, brand.ID, now.AddDate(1, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, models.BrandStatusActive, brand.Status)
		assert.Equal(t, models.SubscriptionActive, brand.Subscription.Status)
	})

	t.Run("rejects period end in the past", func(t *testing.T) {
		store := newFakeBillingStore()
		brand := store.addBrand("acme", now.Add(time.Hour))

		err := newTestSweeper(store, now).Renew(ctx, brand.ID, now.Add(-time.Minute))
		assert.Error(t, err)
	})
}
