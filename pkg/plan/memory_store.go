package plan

import (
	"context"
	"sort"
	"sync"
)

// memoryStore is an in-memory Store implementation, used in tests and for
// fixed catalogs seeded from configuration.
type memoryStore struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryStore returns an empty in-memory plan store.
// All reads and writes operate on deep copies so callers can never mutate
// stored state through returned pointers.
func NewMemoryStore() Store {
	return &memoryStore{plans: make(map[string]Plan)}
}

func (s *memoryStore) Create(ctx context.Context, p *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID]; exists {
		return ErrDuplicatePlan
	}
	s.plans[p.ID] = p.Clone()
	return nil
}

func (s *memoryStore) Update(ctx context.Context, p *Plan, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.plans[p.ID]
	if !exists {
		return ErrPlanNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}

	// The recommended flag belongs to SetRecommended; keep whatever is
	// stored so an update carrying a stale flag cannot break the
	// single-recommended invariant.
	next := p.Clone()
	next.Recommended = stored.Recommended
	s.plans[p.ID] = next
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.plans[id]
	if !exists {
		return nil, ErrPlanNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (s *memoryStore) GetByName(ctx context.Context, name string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Name == name {
			out := p.Clone()
			return &out, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (s *memoryStore) List(ctx context.Context) ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.Clone())
	}
	// Stable ordering for deterministic callers and tests.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryStore) SetRecommended(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[id]; !exists {
		return ErrPlanNotFound
	}

	for planID, p := range s.plans {
		p.Recommended = planID == id
		s.plans[planID] = p
	}
	return nil
}
