package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/audit"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// SystemActor is the identity recorded for mutations driven by the billing
// sweep rather than a human operator.
const SystemActor = "system"

// minReasonLen is the business-rule minimum for cancellation reasons.
const minReasonLen = 5

// conflictRetries bounds how often a mutation is replayed against fresh
// state after losing a version race.
const conflictRetries = 3

// CreateParams holds everything needed to open a new subscription.
// The caller decides trial eligibility; the engine only records the starting
// status it is given.
type CreateParams struct {
	UserID      string
	Plan        plan.Plan
	Cycle       plan.BillingCycle
	StartStatus Status // StatusTrial or StatusActive
	AutoRenew   bool
	Discount    *Discount
	Actor       string
}

// CancelParams holds the cancellation metadata.
type CancelParams struct {
	Reason      string
	Feedback    string
	CancelledBy string
	Actor       string
}

// Service is the lifecycle engine operating on subscription records.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)

	Activate(ctx context.Context, id uuid.UUID, actor string) (*Subscription, error)
	Cancel(ctx context.Context, id uuid.UUID, params CancelParams) (*Subscription, error)
	Suspend(ctx context.Context, id uuid.UUID, reason, actor string) (*Subscription, error)
	Reactivate(ctx context.Context, id uuid.UUID, actor string) (*Subscription, error)
	ChangePlan(ctx context.Context, id uuid.UUID, newPlan plan.Plan, actor string) (*Subscription, error)
	Renew(ctx context.Context, id uuid.UUID, cycle plan.BillingCycle, actor string) (*Subscription, error)
	UpdateUsage(ctx context.Context, id uuid.UUID, delta UsageDelta, actor string) (*Subscription, error)
	AddNote(ctx context.Context, id uuid.UUID, text, author, category string) (*Subscription, error)

	BulkCancel(ctx context.Context, ids []uuid.UUID, params CancelParams) BulkResult

	FindExpiring(ctx context.Context, days int) ([]Subscription, error)
	FindDueForRenewal(ctx context.Context) ([]Subscription, error)
	CountActiveByPlan(ctx context.Context, planID string) (int64, error)
}

type service struct {
	store  Store
	auditl audit.Logger
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates the lifecycle engine over the given store.
// Panics if store is nil to fail fast during initialization.
func NewService(store Store, opts ...ServiceOption) Service {
	if store == nil {
		panic("subscription: store is required")
	}

	s := &service{
		store:  store,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new subscription, snapshotting the plan by value.
func (s *service) Create(ctx context.Context, params CreateParams) (*Subscription, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, errors.Join(ErrValidation, ErrUserRequired)
	}
	if !params.Cycle.Valid() {
		return nil, errors.Join(ErrValidation, ErrUnknownCycle, fmt.Errorf("cycle %q", params.Cycle))
	}
	if err := params.Plan.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	switch params.StartStatus {
	case StatusTrial:
		if !params.Plan.Trial.Enabled {
			return nil, errors.Join(ErrValidation, ErrPlanNotTrialable)
		}
	case StatusActive:
	default:
		return nil, errors.Join(ErrValidation, ErrUnknownStatus, fmt.Errorf("status %q", params.StartStatus))
	}

	now := s.now()
	sub := &Subscription{
		ID:        uuid.New(),
		UserID:    params.UserID,
		Plan:      SnapshotOf(params.Plan),
		Status:    params.StartStatus,
		Amount:    params.Plan.PriceFor(params.Cycle),
		Cycle:     params.Cycle,
		AutoRenew: params.AutoRenew,
		StartDate: now,
		EndDate:   params.Cycle.PeriodEnd(now),
		Usage:     Usage{LastUpdated: now},
		Discount:  params.Discount,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if params.StartStatus == StatusTrial {
		trialEnd := params.Plan.TrialEnd(now)
		sub.TrialStart = &now
		sub.TrialEnd = &trialEnd
	}
	if params.AutoRenew && sub.Status == StatusActive {
		end := sub.EndDate
		sub.NextBillingDate = &end
	}

	sub.appendNote(
		fmt.Sprintf("subscription created on plan %s (%s)", sub.Plan.Name, sub.Cycle),
		actorOr(params.Actor), "lifecycle", now,
	)

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.audit(ctx, "subscription.create", params.Actor, sub.ID, nil,
		audit.WithMetadata("plan", sub.Plan.Name),
		audit.WithMetadata("status", string(sub.Status)),
	)
	return sub, nil
}

// Get retrieves a subscription by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return s.store.Get(ctx, id)
}

// Activate moves the subscription to active. Re-activating an already-active
// subscription is a precondition error, not a silent no-op.
func (s *service) Activate(ctx context.Context, id uuid.UUID, actor string) (*Subscription, error) {
	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opActivate, sub.Status); err != nil {
			return err
		}

		sub.Status = StatusActive
		sub.SuspendedAt = nil
		if sub.AutoRenew {
			end := sub.EndDate
			sub.NextBillingDate = &end
		}
		sub.appendNote("subscription activated", actorOr(actor), "lifecycle", now)
		return nil
	})
	s.audit(ctx, "subscription.activate", actor, id, err)
	return sub, err
}

// Cancel closes the subscription permanently. Requires a reason of minimum
// length and forces auto-renew off.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, params CancelParams) (*Subscription, error) {
	reason := strings.TrimSpace(params.Reason)
	if len(reason) < minReasonLen {
		return nil, errors.Join(ErrValidation, ErrReasonTooShort,
			fmt.Errorf("reason must be at least %d characters", minReasonLen))
	}

	cancelledBy := params.CancelledBy
	if cancelledBy == "" {
		cancelledBy = actorOr(params.Actor)
	}

	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opCancel, sub.Status); err != nil {
			return err
		}

		sub.Status = StatusCancelled
		sub.AutoRenew = false
		sub.NextBillingDate = nil
		sub.Cancellation = &Cancellation{
			Reason:      reason,
			Feedback:    params.Feedback,
			CancelledBy: cancelledBy,
			Date:        now,
		}
		sub.appendNote("subscription cancelled: "+reason, actorOr(params.Actor), "lifecycle", now)
		return nil
	})
	s.audit(ctx, "subscription.cancel", params.Actor, id, err,
		audit.WithMetadata("reason", reason))
	return sub, err
}

// Suspend pauses an active or trialing subscription. EndDate and usage
// counters are left untouched so reactivation resumes exactly where the
// subscription left off.
func (s *service) Suspend(ctx context.Context, id uuid.UUID, reason, actor string) (*Subscription, error) {
	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opSuspend, sub.Status); err != nil {
			return err
		}

		sub.Status = StatusSuspended
		sub.SuspendedAt = &now

		note := "subscription suspended"
		if reason != "" {
			note += ": " + reason
		}
		sub.appendNote(note, actorOr(actor), "lifecycle", now)
		return nil
	})
	s.audit(ctx, "subscription.suspend", actor, id, err,
		audit.WithMetadata("reason", reason))
	return sub, err
}

// Reactivate resumes a suspended subscription. Rejected from any other state.
func (s *service) Reactivate(ctx context.Context, id uuid.UUID, actor string) (*Subscription, error) {
	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opReactivate, sub.Status); err != nil {
			return err
		}

		sub.Status = StatusActive
		sub.SuspendedAt = nil
		sub.appendNote("subscription reactivated", actorOr(actor), "lifecycle", now)
		return nil
	})
	s.audit(ctx, "subscription.reactivate", actor, id, err)
	return sub, err
}

// ChangePlan replaces the plan snapshot wholesale, recomputes the amount for
// the current billing cycle, and appends an upgrade-history entry with the
// price delta. The status is left unchanged.
func (s *service) ChangePlan(ctx context.Context, id uuid.UUID, newPlan plan.Plan, actor string) (*Subscription, error) {
	if err := newPlan.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	if !newPlan.Active {
		return nil, errors.Join(ErrValidation, plan.ErrPlanInactive)
	}

	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opChangePlan, sub.Status); err != nil {
			return err
		}

		oldName := sub.Plan.Name
		oldAmount := sub.Amount.Amount
		newAmount := newPlan.PriceFor(sub.Cycle)

		sub.Plan = SnapshotOf(newPlan)
		sub.Amount = newAmount
		sub.History = append(sub.History, PlanChange{
			FromPlan:   oldName,
			ToPlan:     newPlan.Name,
			Date:       now,
			PriceDelta: newAmount.Amount - oldAmount,
		})
		sub.appendNote(
			fmt.Sprintf("plan changed from %s to %s", oldName, newPlan.Name),
			actorOr(actor), "billing", now,
		)
		return nil
	})
	s.audit(ctx, "subscription.change_plan", actor, id, err,
		audit.WithMetadata("to_plan", newPlan.Name))
	return sub, err
}

// Renew extends the subscription by one billing cycle measured from the
// current EndDate, never from now: renewing late must not donate extra days.
// Renewal is the universal "make current" operation and forces the status to
// active, resurrecting suspended and expired records. Pass an empty cycle to
// keep the existing one.
func (s *service) Renew(ctx context.Context, id uuid.UUID, cycle plan.BillingCycle, actor string) (*Subscription, error) {
	if cycle != "" && !cycle.Valid() {
		return nil, errors.Join(ErrValidation, ErrUnknownCycle, fmt.Errorf("cycle %q", cycle))
	}

	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if err := checkTransition(opRenew, sub.Status); err != nil {
			return err
		}

		if cycle != "" {
			sub.Cycle = cycle
		}

		newEnd := sub.Cycle.PeriodEnd(sub.EndDate)
		sub.EndDate = newEnd
		sub.LastBillingDate = &now
		end := newEnd
		sub.NextBillingDate = &end
		sub.Status = StatusActive
		sub.SuspendedAt = nil

		sub.appendNote(
			fmt.Sprintf("subscription renewed until %s", newEnd.Format("2006-01-02")),
			actorOr(actor), "billing", now,
		)
		return nil
	})
	s.audit(ctx, "subscription.renew", actor, id, err)
	return sub, err
}

// UpdateUsage merges the given counter values into the record. Counters are
// stored as reported; exceeding a plan limit is surfaced through Overages,
// never clamped here.
func (s *service) UpdateUsage(ctx context.Context, id uuid.UUID, delta UsageDelta, actor string) (*Subscription, error) {
	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		if delta.Users != nil {
			sub.Usage.Users = *delta.Users
		}
		if delta.Projects != nil {
			sub.Usage.Projects = *delta.Projects
		}
		if delta.StorageUsedGB != nil {
			sub.Usage.StorageUsedGB = *delta.StorageUsedGB
		}
		if delta.APICallsUsed != nil {
			sub.Usage.APICallsUsed = *delta.APICallsUsed
		}
		sub.Usage.LastUpdated = now
		sub.appendNote("usage counters updated", actorOr(actor), "usage", now)
		return nil
	})
	s.audit(ctx, "subscription.update_usage", actor, id, err)
	return sub, err
}

// AddNote appends an admin note to the record's append-only log.
func (s *service) AddNote(ctx context.Context, id uuid.UUID, text, author, category string) (*Subscription, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Join(ErrValidation, ErrNoteTextMissing)
	}
	if category == "" {
		category = "general"
	}

	sub, err := s.mutate(ctx, id, func(sub *Subscription, now time.Time) error {
		sub.appendNote(text, actorOr(author), category, now)
		return nil
	})
	s.audit(ctx, "subscription.add_note", author, id, err)
	return sub, err
}

// BulkCancel cancels each record independently: one failure never rolls back
// or blocks the others.
func (s *service) BulkCancel(ctx context.Context, ids []uuid.UUID, params CancelParams) BulkResult {
	result := BulkResult{Errors: make(map[uuid.UUID]error)}
	for _, id := range ids {
		if _, err := s.Cancel(ctx, id, params); err != nil {
			result.Failed++
			result.Errors[id] = err
			s.logger.WarnContext(ctx, "bulk cancel: record failed",
				logger.SubscriptionID(id),
				logger.Error(err))
			continue
		}
		result.Succeeded++
	}
	return result
}

// FindExpiring returns subscriptions whose paid period ends within the given
// number of days and which will not renew on their own. They are surfaced
// for notification; the engine never auto-expires them.
func (s *service) FindExpiring(ctx context.Context, days int) ([]Subscription, error) {
	now := s.now()
	to := now.AddDate(0, 0, days)
	autoRenew := false
	return s.store.List(ctx, Filter{
		Statuses:  []Status{StatusActive, StatusTrial},
		AutoRenew: &autoRenew,
		EndsFrom:  &now,
		EndsTo:    &to,
	})
}

// FindDueForRenewal returns active auto-renewing subscriptions whose next
// billing date has arrived.
func (s *service) FindDueForRenewal(ctx context.Context) ([]Subscription, error) {
	now := s.now()
	autoRenew := true
	return s.store.List(ctx, Filter{
		Statuses:        []Status{StatusActive},
		AutoRenew:       &autoRenew,
		DueForRenewalAt: &now,
	})
}

// CountActiveByPlan counts non-terminal subscriptions referencing a plan.
// Feeds the catalog's deactivation precondition.
func (s *service) CountActiveByPlan(ctx context.Context, planID string) (int64, error) {
	return s.store.Count(ctx, Filter{
		Statuses: []Status{StatusTrial, StatusActive, StatusSuspended, StatusPendingPayment, StatusPendingCancellation},
		PlanID:   planID,
	})
}

// mutate runs a load-check-update cycle under optimistic version control.
// On a lost version race the whole cycle is replayed against fresh state, so
// transition checks are always evaluated against what is actually stored;
// exhausted retries surface the conflict to the caller.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(sub *Subscription, now time.Time) error) (*Subscription, error) {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		sub, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		now := s.now()
		if err := fn(sub, now); err != nil {
			return nil, err
		}

		expected := sub.Version
		sub.Version++
		sub.UpdatedAt = now

		if err := s.store.Update(ctx, sub, expected); err != nil {
			if errors.Is(err, ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return sub, nil
	}
	return nil, lastErr
}

// audit emits an audit event for a mutation outcome. Audit write failures
// are logged, not propagated: at this point the mutation itself has already
// been decided.
func (s *service) audit(ctx context.Context, action, actor string, id uuid.UUID, opErr error, opts ...audit.EventOption) {
	if s.auditl == nil {
		return
	}

	opts = append(opts, audit.WithActor(actorOr(actor)), audit.WithSubscription(id.String()))

	var err error
	if opErr != nil {
		err = s.auditl.LogError(ctx, action, opErr, opts...)
	} else {
		err = s.auditl.Log(ctx, action, opts...)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "audit log write failed",
			logger.Action(action),
			logger.Error(err))
	}
}

func actorOr(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
