// Package plan provides the billing plan catalog: purchasable plan definitions
// with per-cycle pricing, trial policy, and feature limits.
//
// Plans are catalog entries, not live entitlements. Subscriptions copy the plan
// attributes they need into a snapshot at creation or plan-change time, so
// editing a plan never retroactively alters existing subscribers.
//
// Key concepts:
//
//   - Plan: a versioned catalog entry with price, billing cycles, and limits
//   - BillingCycle: the recurrence unit (monthly, quarterly, yearly, lifetime)
//   - FeatureLimits: resource quotas and feature flags; -1 means unlimited
//   - Catalog: the service enforcing catalog invariants, most notably that at
//     most one plan is recommended at any instant
//
// Basic usage:
//
//	store := plan.NewMemoryStore()
//	catalog := plan.NewCatalog(store)
//
//	pro, err := catalog.Create(ctx, plan.Plan{
//	    Name:  "Pro",
//	    Type:  plan.TypeProfessional,
//	    Price: plan.Money{Amount: 2500, Currency: "USD"},
//	    Cycles: map[plan.BillingCycle]plan.CycleOption{
//	        plan.CycleMonthly: {Price: plan.Money{Amount: 2500, Currency: "USD"}},
//	        plan.CycleYearly:  {Price: plan.Money{Amount: 25000, Currency: "USD"}, DiscountPercent: 17},
//	    },
//	    Trial:  plan.TrialPolicy{Enabled: true, DurationDays: 14},
//	    Active: true,
//	    Public: true,
//	})
//
// Plans are soft-retired with Catalog.Deactivate and never hard-deleted while
// subscriptions still reference them.
package plan
