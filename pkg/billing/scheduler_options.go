package billing

import "log/slog"

// SchedulerOption is a functional option for configuring a scheduler.
type SchedulerOption func(*Scheduler)

// WithExpiryNotifier sets the callback invoked for each subscription that
// will lapse within the lookahead window.
func WithExpiryNotifier(fn ExpiryNotifier) SchedulerOption {
	return func(s *Scheduler) {
		if fn != nil {
			s.notifier = fn
		}
	}
}

// WithLogger sets the logger for the scheduler.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}
