package logger

import (
	"log/slog"

	"github.com/google/uuid"
)

// Error returns the standard attribute for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// SubscriptionID returns the standard attribute for a subscription identifier.
func SubscriptionID(id uuid.UUID) slog.Attr {
	return slog.String("subscription_id", id.String())
}

// UserID returns the standard attribute for a subscription owner.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// PlanID returns the standard attribute for a plan identifier.
func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

// Action returns the standard attribute for a lifecycle operation name.
func Action(name string) slog.Attr {
	return slog.String("action", name)
}
