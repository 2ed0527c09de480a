// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each configuration type is parsed once per process and cached, so
// components can call Load for their own config without coordinating:
//
//	type BillingConfig struct {
//	    SweepInterval time.Duration `env:"BILLING_SWEEP_INTERVAL" envDefault:"1h"`
//	}
//
//	var cfg BillingConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// ResetCache clears the cache between tests when the process environment
// changes.
package config
