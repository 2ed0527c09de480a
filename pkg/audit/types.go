package audit

import (
	"fmt"
	"time"
)

// Result represents the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultError   Result = "error"
)

// Event represents a single audit log entry.
type Event struct {
	ID             string         `json:"id" bson:"_id"`
	Action         string         `json:"action" bson:"action"`
	Actor          string         `json:"actor" bson:"actor"`
	SubscriptionID string         `json:"subscription_id,omitempty" bson:"subscription_id,omitempty"`
	Result         Result         `json:"result" bson:"result"`
	Error          string         `json:"error,omitempty" bson:"error,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// Validate checks that the event has all required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)

// WithActor sets the acting identity on the event.
func WithActor(actor string) EventOption {
	return func(e *Event) {
		e.Actor = actor
	}
}

// WithSubscription attaches the subscription the action targeted.
func WithSubscription(id string) EventOption {
	return func(e *Event) {
		e.SubscriptionID = id
	}
}

// WithMetadata adds a metadata entry to the event.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// Criteria filters audit event queries.
type Criteria struct {
	Action         string
	Actor          string
	SubscriptionID string
	From           time.Time
	To             time.Time
	Limit          int
}
