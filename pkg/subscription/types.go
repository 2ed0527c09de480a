package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusTrial               Status = "trial"
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusSuspended           Status = "suspended"
	StatusCancelled           Status = "cancelled"
	StatusExpired             Status = "expired"
	StatusPendingPayment      Status = "pending_payment"
	StatusPendingCancellation Status = "pending_cancellation"
)

// Valid reports whether the status is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusInactive, StatusSuspended,
		StatusCancelled, StatusExpired, StatusPendingPayment, StatusPendingCancellation:
		return true
	}
	return false
}

// Terminal reports whether the status is permanently closed.
// No operation leaves a terminal status except Renew, which resurrects
// expired subscriptions (but never cancelled ones).
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// PlanSnapshot is the copy of plan attributes taken at subscription creation
// or plan-change time. The snapshot, not a live catalog join, is
// authoritative for entitlement checks.
type PlanSnapshot struct {
	PlanID   string             `json:"plan_id" bson:"plan_id"`
	Name     string             `json:"name" bson:"name"`
	Type     plan.Type          `json:"type" bson:"type"`
	Features plan.FeatureLimits `json:"features" bson:"features"`
}

// SnapshotOf copies the entitlement-relevant attributes of a plan by value.
func SnapshotOf(p plan.Plan) PlanSnapshot {
	return PlanSnapshot{
		PlanID:   p.ID,
		Name:     p.Name,
		Type:     p.Type,
		Features: p.Features.Clone(),
	}
}

// Usage holds the subscription's current resource counters.
type Usage struct {
	Users         int64     `json:"users" bson:"users"`
	Projects      int64     `json:"projects" bson:"projects"`
	StorageUsedGB int64     `json:"storage_used_gb" bson:"storage_used_gb"`
	APICallsUsed  int64     `json:"api_calls_used" bson:"api_calls_used"`
	LastUpdated   time.Time `json:"last_updated" bson:"last_updated"`
}

// UsageDelta is a partial usage update. Nil fields are left unchanged;
// set fields replace the stored counter.
type UsageDelta struct {
	Users         *int64
	Projects      *int64
	StorageUsedGB *int64
	APICallsUsed  *int64
}

// Overage reports a usage counter exceeding its snapshot limit.
// Overages are reported, never clamped; enforcement is the caller's call.
type Overage struct {
	Resource string `json:"resource"`
	Used     int64  `json:"used"`
	Limit    int64  `json:"limit"`
}

// Discount holds the discount metadata applied to a subscription.
type Discount struct {
	Code           string `json:"code" bson:"code"`
	Amount         int64  `json:"amount" bson:"amount"`
	Type           string `json:"type" bson:"type"` // "percent" or "fixed"
	OriginalAmount int64  `json:"original_amount" bson:"original_amount"`
}

// PlanChange is one entry in the upgrade/downgrade history.
type PlanChange struct {
	FromPlan   string    `json:"from_plan" bson:"from_plan"`
	ToPlan     string    `json:"to_plan" bson:"to_plan"`
	Date       time.Time `json:"date" bson:"date"`
	PriceDelta int64     `json:"price_delta" bson:"price_delta"` // negative for downgrades
}

// Cancellation holds the metadata recorded when a subscription is cancelled.
type Cancellation struct {
	Reason      string    `json:"reason" bson:"reason"`
	Feedback    string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
	CancelledBy string    `json:"cancelled_by" bson:"cancelled_by"`
	Date        time.Time `json:"date" bson:"date"`
}

// Note is one entry in the subscription's append-only admin note log.
type Note struct {
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	Category  string    `json:"category" bson:"category"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BulkResult reports the per-record outcome of a bulk operation.
// Bulk operations never roll back: one record's failure does not affect
// the others.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    map[uuid.UUID]error
}
