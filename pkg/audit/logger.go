package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger records audit events.
type Logger interface {
	// Log records a successful action.
	Log(ctx context.Context, action string, opts ...EventOption) error

	// LogError records a failed action together with its error.
	LogError(ctx context.Context, action string, err error, opts ...EventOption) error
}

// Storage persists audit events.
type Storage interface {
	// Store appends an event. Events are never updated in place.
	Store(ctx context.Context, event Event) error

	// Query returns events matching the criteria, newest first.
	Query(ctx context.Context, criteria Criteria) ([]Event, error)
}

type logger struct {
	storage Storage
}

// NewLogger creates a new audit logger.
// Panics if storage is nil to fail fast during initialization.
func NewLogger(storage Storage) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &logger{storage: storage}
}

func (l *logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    ResultSuccess,
		CreatedAt: time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

func (l *logger) LogError(ctx context.Context, action string, actionErr error, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    ResultError,
		CreatedAt: time.Now().UTC(),
	}
	if actionErr != nil {
		event.Error = actionErr.Error()
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}
