package subscription

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store implementation, used in tests.
// All reads and writes operate on deep copies so callers can never mutate
// stored state through returned pointers.
type memoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
}

// NewMemoryStore returns an empty in-memory subscription store.
func NewMemoryStore() Store {
	return &memoryStore{subs: make(map[uuid.UUID]*Subscription)}
}

func (s *memoryStore) Create(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = sub.Clone()
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subs[id]
	if !exists {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s *memoryStore) Update(ctx context.Context, sub *Subscription, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subs[sub.ID]
	if !exists {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrConflict
	}
	s.subs[sub.ID] = sub.Clone()
	return nil
}

func (s *memoryStore) List(ctx context.Context, filter Filter) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Subscription, 0)
	for _, sub := range s.subs {
		if filter.matches(sub) {
			out = append(out, *sub.Clone())
		}
	}
	// Stable ordering for deterministic callers and tests.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryStore) Count(ctx context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, sub := range s.subs {
		if filter.matches(sub) {
			n++
		}
	}
	return n, nil
}
