package revenue

import "time"

// AggregatorOption is a functional option for configuring an aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the time source. Used in tests for deterministic
// month bucketing and window math.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}
