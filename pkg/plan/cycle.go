package plan

import "time"

// BillingCycle represents the recurrence unit for a subscription.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
	CycleLifetime  BillingCycle = "lifetime"
)

// LifetimeEnd is the sentinel expiry date for lifetime subscriptions.
// Far enough in the future to sort after any real billing date.
var LifetimeEnd = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Valid reports whether the cycle is one of the known billing cycles.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleYearly, CycleLifetime:
		return true
	}
	return false
}

// Months returns the cycle length in months, used for MRR normalization.
// Lifetime returns 0 since it has no periodic recurrence.
func (c BillingCycle) Months() int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleYearly:
		return 12
	}
	return 0
}

// PeriodEnd returns the end of one billing period starting at from.
//
// Calendar arithmetic uses time.AddDate, which normalizes day-of-month
// overflow (Jan 31 + 1 month lands on Mar 2/3 rather than clamping to the
// last day of February). This is the platform default and the one consistent
// rule applied everywhere in the engine.
func (c BillingCycle) PeriodEnd(from time.Time) time.Time {
	switch c {
	case CycleMonthly:
		return from.AddDate(0, 1, 0)
	case CycleQuarterly:
		return from.AddDate(0, 3, 0)
	case CycleYearly:
		return from.AddDate(1, 0, 0)
	case CycleLifetime:
		return LifetimeEnd
	}
	return from
}
