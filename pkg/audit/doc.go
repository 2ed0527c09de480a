// Package audit records who did what to which subscription.
//
// Every mutating engine operation is invoked by an identified actor (an admin
// or the scheduler acting as "system"); the audit log is the durable record of
// those invocations, separate from the append-only notes embedded in each
// subscription document.
//
// Basic usage:
//
//	storage := audit.NewMemoryStorage()
//	logger := audit.NewLogger(storage)
//
//	_ = logger.Log(ctx, "subscription.cancel",
//	    audit.WithActor("admin@example.com"),
//	    audit.WithSubscription(subID),
//	    audit.WithMetadata("reason", reason),
//	)
//
// Storage implementations are expected to be append-only; events are never
// updated or deleted through this package.
package audit
