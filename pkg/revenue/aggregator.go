package revenue

import (
	"context"
	"time"

	"github.com/dmitrymomot/billingkit/pkg/plan"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// monthKeyFormat keys RevenueByMonth buckets, e.g. "2026-05".
const monthKeyFormat = "2006-01"

// Statistics is a point-in-time snapshot of the subscription base.
// Monetary figures are in the smallest currency unit.
type Statistics struct {
	TotalSubscriptions int64                         `json:"total_subscriptions"`
	PaidSubscribers    int64                         `json:"paid_subscribers"`
	TotalRevenue       int64                         `json:"total_revenue"`
	AverageAmount      int64                         `json:"average_amount"`
	StatusDistribution map[subscription.Status]int64 `json:"status_distribution"`
	PlanDistribution   map[plan.Type]int64           `json:"plan_distribution"`
	CycleDistribution  map[plan.BillingCycle]int64   `json:"cycle_distribution"`
	RevenueByMonth     map[string]int64              `json:"revenue_by_month"`
	GeneratedAt        time.Time                     `json:"generated_at"`
}

// Aggregator computes revenue figures from stored subscriptions.
type Aggregator struct {
	store subscription.Store
	now   func() time.Time
}

// NewAggregator creates an aggregator over the subscription store.
// Panics if store is nil to fail fast during initialization.
func NewAggregator(store subscription.Store, opts ...AggregatorOption) *Aggregator {
	if store == nil {
		panic("revenue: store is required")
	}

	a := &Aggregator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Statistics aggregates the subscriptions matching the filter. Revenue totals
// count active subscriptions only; distributions cover every matched record.
// RevenueByMonth buckets the trailing twelve months by each active
// subscription's last billing date, falling back to its start date when it
// has never been billed.
func (a *Aggregator) Statistics(ctx context.Context, filter subscription.Filter) (*Statistics, error) {
	subs, err := a.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := a.now()
	horizon := now.AddDate(0, -12, 0)

	stats := &Statistics{
		StatusDistribution: make(map[subscription.Status]int64),
		PlanDistribution:   make(map[plan.Type]int64),
		CycleDistribution:  make(map[plan.BillingCycle]int64),
		RevenueByMonth:     make(map[string]int64),
		GeneratedAt:        now,
	}

	for i := range subs {
		sub := &subs[i]
		stats.TotalSubscriptions++
		stats.StatusDistribution[sub.Status]++
		stats.PlanDistribution[sub.Plan.Type]++
		stats.CycleDistribution[sub.Cycle]++

		if sub.Status != subscription.StatusActive {
			continue
		}

		stats.TotalRevenue += sub.Amount.Amount
		if sub.Amount.Amount > 0 {
			stats.PaidSubscribers++
		}

		billedAt := sub.StartDate
		if sub.LastBillingDate != nil {
			billedAt = *sub.LastBillingDate
		}
		if !billedAt.Before(horizon) {
			stats.RevenueByMonth[billedAt.Format(monthKeyFormat)] += sub.Amount.Amount
		}
	}

	if stats.PaidSubscribers > 0 {
		stats.AverageAmount = stats.TotalRevenue / stats.PaidSubscribers
	}
	return stats, nil
}

// MRR returns the monthly recurring revenue in the smallest currency unit:
// each active subscription's amount normalized to one month. Lifetime
// subscriptions carry no recurring revenue and contribute nothing.
func (a *Aggregator) MRR(ctx context.Context) (int64, error) {
	subs, err := a.store.List(ctx, subscription.Filter{
		Statuses: []subscription.Status{subscription.StatusActive},
	})
	if err != nil {
		return 0, err
	}

	var mrr int64
	for i := range subs {
		months := subs[i].Cycle.Months()
		if months <= 0 {
			continue
		}
		mrr += subs[i].Amount.Amount / int64(months)
	}
	return mrr, nil
}

// ChurnRate returns cancellations in the window as a percentage of
// subscriptions created in the same window. Returns 0 when nothing was
// created, never NaN.
func (a *Aggregator) ChurnRate(ctx context.Context, from, to time.Time) (float64, error) {
	created, err := a.store.Count(ctx, subscription.Filter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return 0, err
	}
	if created == 0 {
		return 0, nil
	}

	cancelled, err := a.store.Count(ctx, subscription.Filter{
		Statuses:      []subscription.Status{subscription.StatusCancelled},
		CancelledFrom: &from,
		CancelledTo:   &to,
	})
	if err != nil {
		return 0, err
	}

	return float64(cancelled) / float64(created) * 100, nil
}

// ExpiringSoon returns subscriptions lapsing within the given number of days
// that will not renew on their own. Mirrors the billing sweep's selection for
// dashboard use.
func (a *Aggregator) ExpiringSoon(ctx context.Context, days int) ([]subscription.Subscription, error) {
	now := a.now()
	to := now.AddDate(0, 0, days)
	autoRenew := false
	return a.store.List(ctx, subscription.Filter{
		Statuses:  []subscription.Status{subscription.StatusActive, subscription.StatusTrial},
		AutoRenew: &autoRenew,
		EndsFrom:  &now,
		EndsTo:    &to,
	})
}

// DueForRenewal returns active auto-renewing subscriptions whose next billing
// date has arrived.
func (a *Aggregator) DueForRenewal(ctx context.Context) ([]subscription.Subscription, error) {
	now := a.now()
	autoRenew := true
	return a.store.List(ctx, subscription.Filter{
		Statuses:        []subscription.Status{subscription.StatusActive},
		AutoRenew:       &autoRenew,
		DueForRenewalAt: &now,
	})
}
