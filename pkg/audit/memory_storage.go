package audit

import (
	"context"
	"sync"
)

// memoryStorage is an in-memory append-only event store, used in tests.
type memoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStorage returns an empty in-memory audit storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{}
}

func (s *memoryStorage) Store(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memoryStorage) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	// Newest first.
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if criteria.Action != "" && e.Action != criteria.Action {
			continue
		}
		if criteria.Actor != "" && e.Actor != criteria.Actor {
			continue
		}
		if criteria.SubscriptionID != "" && e.SubscriptionID != criteria.SubscriptionID {
			continue
		}
		if !criteria.From.IsZero() && e.CreatedAt.Before(criteria.From) {
			continue
		}
		if !criteria.To.IsZero() && e.CreatedAt.After(criteria.To) {
			continue
		}
		out = append(out, e)
		if criteria.Limit > 0 && len(out) >= criteria.Limit {
			break
		}
	}
	return out, nil
}
