package billing

import "time"

// Config holds the configuration for the billing sweep.
type Config struct {
	SweepInterval       time.Duration `env:"BILLING_SWEEP_INTERVAL" envDefault:"1h"`
	ExpiryLookaheadDays int           `env:"BILLING_EXPIRY_LOOKAHEAD_DAYS" envDefault:"7"`
}
