// Package billing enforces subscription state: an hourly sweep suspends
// brands whose paid period has ended.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/metrics"
	"github.com/framehaus/framehaus/internal/models"
)

// sweepSchedule runs the expiry sweep at the top of every hour.
const sweepSchedule = "0 * * * *"

// Store defines the data access the billing sweep needs.
type Store interface {
	ListExpiredActiveBrands(ctx context.Context, now time.Time) ([]*models.Brand, error)
	SuspendBrandForBilling(ctx context.Context, id uuid.UUID) error
	ExtendBrandSubscription(ctx context.Context, id uuid.UUID, periodEnd time.Time) error
	CreateAdminAuditLog(ctx context.Context, log *models.AdminAuditLog) error
}

// Sweeper suspends brands with expired subscriptions on a cron schedule.
type Sweeper struct {
	store  Store
	logger zerolog.Logger
	cron   *cron.Cron
	now    func() time.Time
}

// NewSweeper creates a billing sweeper.
func NewSweeper(store Store, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		logger: logger.With().Str("component", "billing").Logger(),
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start schedules the hourly sweep. Call Stop on shutdown.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error().Err(err).Msg("billing sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule billing sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", sweepSchedule).Msg("billing sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep suspends every active brand whose subscription period has ended and
// returns how many were suspended. Individual failures are logged and do not
// abort the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.store.ListExpiredActiveBrands(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired brands: %w", err)
	}

	suspended := 0
	for _, brand := range expired {
		if err := s.store.SuspendBrandForBilling(ctx, brand.ID); err != nil {
			s.logger.Error().Err(err).
				Str("brand_id", brand.ID.String()).
				Str("subdomain", brand.Subdomain).
				Msg("suspend expired brand")
			continue
		}

		s.writeAudit(ctx, brand)
		metrics.BrandsSuspended.Inc()
		suspended++

		s.logger.Info().
			Str("brand_id", brand.ID.String()).
			Str("subdomain", brand.Subdomain).
			Time("period_end", brand.Subscription.PeriodEnd).
			Msg("brand suspended for expired subscription")
	}

	if len(expired) > 0 {
		s.logger.Info().
			Int("expired", len(expired)).
			Int("suspended", suspended).
			Msg("billing sweep complete")
	}
	return suspended, nil
}

// Renew reactivates a brand's subscription with a new period end, typically
// after a payment notification from the billing provider.
func (s *Sweeper) Renew(ctx context.Context, brandID uuid.UUID, periodEnd time.Time) error {
	if !periodEnd.After(s.now()) {
		return fmt.Errorf("period end %s is not in the future", periodEnd.Format(time.RFC3339))
	}
	if err := s.store.ExtendBrandSubscription(ctx, brandID, periodEnd); err != nil {
		return err
	}
	s.logger.Info().
		Str("brand_id", brandID.String()).
		Time("period_end", periodEnd).
		Msg("subscription renewed")
	return nil
}

// writeAudit records the suspension with uuid.Nil as the actor, marking a
// system-initiated action.
func (s *Sweeper) writeAudit(ctx context.Context, brand *models.Brand) {
	details, err := json.Marshal(map[string]string{
		"subdomain":  brand.Subdomain,
		"reason":     "subscription_expired",
		"period_end": brand.Subscription.PeriodEnd.Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	entry := models.NewAdminAuditLog(uuid.Nil, models.ActionSuspendBrand, &brand.ID, details)
	if err := s.store.CreateAdminAuditLog(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("brand_id", brand.ID.String()).
			Msg("write suspension audit entry")
	}
}
