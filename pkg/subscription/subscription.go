package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// Subscription represents one customer's paid entitlement to a plan.
//
// EndDate is always derived from StartDate plus the billing cycle unless a
// renewal or plan change explicitly moves it. NextBillingDate is only
// meaningful while AutoRenew is set and the subscription is active.
type Subscription struct {
	ID     uuid.UUID `json:"id" bson:"_id"`
	UserID string    `json:"user_id" bson:"user_id"`

	Plan   PlanSnapshot      `json:"plan" bson:"plan"`
	Status Status            `json:"status" bson:"status"`
	Amount plan.Money        `json:"amount" bson:"amount"`
	Cycle  plan.BillingCycle `json:"billing_cycle" bson:"billing_cycle"`

	AutoRenew bool      `json:"auto_renew" bson:"auto_renew"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`

	TrialStart      *time.Time `json:"trial_start,omitempty" bson:"trial_start,omitempty"`
	TrialEnd        *time.Time `json:"trial_end,omitempty" bson:"trial_end,omitempty"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty" bson:"next_billing_date,omitempty"`
	LastBillingDate *time.Time `json:"last_billing_date,omitempty" bson:"last_billing_date,omitempty"`
	SuspendedAt     *time.Time `json:"suspended_at,omitempty" bson:"suspended_at,omitempty"`

	Usage        Usage         `json:"usage" bson:"usage"`
	Discount     *Discount     `json:"discount,omitempty" bson:"discount,omitempty"`
	History      []PlanChange  `json:"history,omitempty" bson:"history,omitempty"`
	Cancellation *Cancellation `json:"cancellation,omitempty" bson:"cancellation,omitempty"`
	Notes        []Note        `json:"notes,omitempty" bson:"notes,omitempty"`

	// Version guards against competing concurrent transitions. Every
	// successful mutation increments it; updates only apply when the stored
	// version still matches the one the mutation was loaded against.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *Subscription) IsTrialing() bool {
	return s.Status == StatusTrial
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsSuspended() bool {
	return s.Status == StatusSuspended
}

func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// IsTerminal reports whether the subscription is permanently closed.
func (s *Subscription) IsTerminal() bool {
	return s.Status.Terminal()
}

// IsLapsedAt reports whether the subscription's paid period has ended at the
// given time. Lapsed is not a status: the engine never auto-expires, it only
// reports (see the billing sweep).
func (s *Subscription) IsLapsedAt(now time.Time) bool {
	return now.After(s.EndDate)
}

// Overages returns the usage counters exceeding the snapshot's limits.
// Counters are reported as-is, never clamped. A limit of plan.Unlimited
// never produces an overage.
func (s *Subscription) Overages() []Overage {
	var out []Overage

	check := func(resource string, used, limit int64) {
		if limit == plan.Unlimited {
			return
		}
		if used > limit {
			out = append(out, Overage{Resource: resource, Used: used, Limit: limit})
		}
	}

	check("users", s.Usage.Users, s.Plan.Features.MaxUsers)
	check("projects", s.Usage.Projects, s.Plan.Features.MaxProjects)
	check("storage", s.Usage.StorageUsedGB, s.Plan.Features.StorageQuotaGB)
	check("api_calls", s.Usage.APICallsUsed, s.Plan.Features.APICallQuota)
	return out
}

// Clone returns a deep copy of the subscription.
func (s *Subscription) Clone() *Subscription {
	out := *s

	copyTime := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := *t
		return &v
	}
	out.TrialStart = copyTime(s.TrialStart)
	out.TrialEnd = copyTime(s.TrialEnd)
	out.NextBillingDate = copyTime(s.NextBillingDate)
	out.LastBillingDate = copyTime(s.LastBillingDate)
	out.SuspendedAt = copyTime(s.SuspendedAt)

	out.Plan.Features = s.Plan.Features.Clone()

	if s.Discount != nil {
		d := *s.Discount
		out.Discount = &d
	}
	if s.Cancellation != nil {
		c := *s.Cancellation
		out.Cancellation = &c
	}
	if s.History != nil {
		out.History = append([]PlanChange(nil), s.History...)
	}
	if s.Notes != nil {
		out.Notes = append([]Note(nil), s.Notes...)
	}
	return &out
}

// appendNote records an attributed note on the subscription.
// The note log is append-only; entries are never edited or removed.
func (s *Subscription) appendNote(text, author, category string, at time.Time) {
	s.Notes = append(s.Notes, Note{
		Text:      text,
		Author:    author,
		Category:  category,
		CreatedAt: at,
	})
}
