package subscription

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/billingkit/pkg/audit"
)

// ServiceOption configures the lifecycle engine during construction.
type ServiceOption func(*service)

// WithAuditLogger wires an audit logger; every mutation outcome is then
// recorded as an audit event.
func WithAuditLogger(l audit.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.auditl = l
		}
	}
}

// WithLogger sets the slog logger used for operational messages.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the engine's time source. Useful for tests that need
// fixed billing dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
