package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter selects subscriptions from the store. Zero-value fields do not
// constrain the result.
type Filter struct {
	Statuses  []Status
	PlanID    string
	UserID    string
	AutoRenew *bool

	// EndsFrom/EndsTo bound the subscription's EndDate (inclusive).
	// Used by the expiring-without-renewal sweep.
	EndsFrom *time.Time
	EndsTo   *time.Time

	// DueForRenewalAt matches subscriptions with NextBillingDate at or
	// before the given instant.
	DueForRenewalAt *time.Time

	// CreatedFrom/CreatedTo bound CreatedAt (inclusive). Used by churn.
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// CancelledFrom/CancelledTo bound the cancellation date (inclusive).
	CancelledFrom *time.Time
	CancelledTo   *time.Time
}

// Store defines the interface for subscription persistence.
type Store interface {
	// Create inserts a new subscription record.
	Create(ctx context.Context, sub *Subscription) error

	// Get retrieves a subscription by ID.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// Update replaces the record, but only while its stored version still
	// equals expectedVersion. Returns ErrConflict when another writer got
	// there first, ErrNotFound when the record does not exist.
	Update(ctx context.Context, sub *Subscription, expectedVersion int64) error

	// List returns subscriptions matching the filter.
	List(ctx context.Context, filter Filter) ([]Subscription, error)

	// Count returns the number of subscriptions matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)
}

// matches reports whether the subscription satisfies every set constraint.
// Shared by store implementations that filter in memory.
func (f Filter) matches(s *Subscription) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if s.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.PlanID != "" && s.Plan.PlanID != f.PlanID {
		return false
	}
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	if f.AutoRenew != nil && s.AutoRenew != *f.AutoRenew {
		return false
	}
	if f.EndsFrom != nil && s.EndDate.Before(*f.EndsFrom) {
		return false
	}
	if f.EndsTo != nil && s.EndDate.After(*f.EndsTo) {
		return false
	}
	if f.DueForRenewalAt != nil {
		if s.NextBillingDate == nil || s.NextBillingDate.After(*f.DueForRenewalAt) {
			return false
		}
	}
	if f.CreatedFrom != nil && s.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && s.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.CancelledFrom != nil {
		if s.Cancellation == nil || s.Cancellation.Date.Before(*f.CancelledFrom) {
			return false
		}
	}
	if f.CancelledTo != nil {
		if s.Cancellation == nil || s.Cancellation.Date.After(*f.CancelledTo) {
			return false
		}
	}
	return true
}
