package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/plan"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// Lifecycle is the slice of the subscription service the sweep needs.
type Lifecycle interface {
	Renew(ctx context.Context, id uuid.UUID, cycle plan.BillingCycle, actor string) (*subscription.Subscription, error)
	FindExpiring(ctx context.Context, days int) ([]subscription.Subscription, error)
	FindDueForRenewal(ctx context.Context) ([]subscription.Subscription, error)
}

// ExpiryNotifier receives subscriptions that will lapse within the lookahead
// window and will not renew on their own. The scheduler only notifies; it
// never expires a record itself.
type ExpiryNotifier func(ctx context.Context, sub subscription.Subscription)

// SweepResult summarizes one pass of the billing sweep.
type SweepResult struct {
	Renewed         int
	RenewalFailures int
	ExpiringSoon    int
}

// Scheduler drives periodic renewal and expiry-warning sweeps.
type Scheduler struct {
	lifecycle Lifecycle
	cfg       Config
	notifier  ExpiryNotifier
	logger    *slog.Logger
}

// NewScheduler creates a billing scheduler over the lifecycle engine.
// Panics if lifecycle is nil to fail fast during initialization.
func NewScheduler(lifecycle Lifecycle, cfg Config, opts ...SchedulerOption) *Scheduler {
	if lifecycle == nil {
		panic("billing: lifecycle is required")
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.ExpiryLookaheadDays <= 0 {
		cfg.ExpiryLookaheadDays = 7
	}

	s := &Scheduler{
		lifecycle: lifecycle,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs a sweep immediately, then on every tick until the context is
// cancelled. Sweep errors are logged, never fatal to the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "billing scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	result, err := s.Sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "billing sweep failed", logger.Error(err))
		return
	}
	s.logger.InfoContext(ctx, "billing sweep completed",
		slog.Int("renewed", result.Renewed),
		slog.Int("renewal_failures", result.RenewalFailures),
		slog.Int("expiring_soon", result.ExpiringSoon))
}

// Sweep performs one renewal-and-expiry pass. Renewals are replayed per
// record: a failure is counted and logged and the sweep moves on. Sweeps are
// safe to overlap since a successful renewal moves the next billing date
// forward, so a concurrent pass no longer matches the same record.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	due, err := s.lifecycle.FindDueForRenewal(ctx)
	if err != nil {
		return result, err
	}
	for _, sub := range due {
		if _, err := s.lifecycle.Renew(ctx, sub.ID, "", subscription.SystemActor); err != nil {
			result.RenewalFailures++
			s.logger.WarnContext(ctx, "renewal failed",
				logger.SubscriptionID(sub.ID),
				logger.UserID(sub.UserID),
				logger.Error(err))
			continue
		}
		result.Renewed++
	}

	expiring, err := s.lifecycle.FindExpiring(ctx, s.cfg.ExpiryLookaheadDays)
	if err != nil {
		return result, err
	}
	result.ExpiringSoon = len(expiring)
	for _, sub := range expiring {
		s.logger.InfoContext(ctx, "subscription expiring without renewal",
			logger.SubscriptionID(sub.ID),
			logger.UserID(sub.UserID),
			slog.Time("end_date", sub.EndDate))
		if s.notifier != nil {
			s.notifier(ctx, sub)
		}
	}

	return result, nil
}
