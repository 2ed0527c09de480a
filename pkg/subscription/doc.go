// Package subscription implements the subscription record and its lifecycle
// engine: creation, activation, cancellation, suspension, reactivation, plan
// changes, renewal, and usage tracking.
//
// A Subscription is one customer's entitlement to a plan. It carries a
// snapshot of the plan attributes copied at creation or plan-change time, so
// later catalog edits never retroactively alter existing subscribers. Records
// are never deleted: cancellation and expiry are terminal statuses, not
// removal.
//
// All lifecycle operations go through Service, which validates the requested
// transition against an explicit transition table, applies the mutation under
// optimistic version control, appends an attributed note to the record, and
// emits an audit event when an audit logger is configured.
//
// Basic usage:
//
//	store := subscription.NewMemoryStore()
//	svc := subscription.NewService(store)
//
//	sub, err := svc.Create(ctx, subscription.CreateParams{
//	    UserID:      "user-42",
//	    Plan:        proPlan,
//	    Cycle:       plan.CycleMonthly,
//	    StartStatus: subscription.StatusTrial,
//	    AutoRenew:   true,
//	    Actor:       "admin@example.com",
//	})
//
//	sub, err = svc.Activate(ctx, sub.ID, "admin@example.com")
//
// Concurrency: a manual action and a scheduler sweep may race on the same
// record. Every mutation is a load-check-update sequence guarded by the
// record's version; the losing writer retries against fresh state a bounded
// number of times and then surfaces ErrConflict.
package subscription
