package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/logger"
)

// Patch describes a partial plan update. Nil fields are left unchanged.
// The recommended flag is deliberately absent: it is only mutated through
// Catalog.SetRecommended so the single-recommended invariant cannot be
// bypassed by a blind update.
type Patch struct {
	Name        *string
	Description *string
	Type        *Type
	Price       *Money
	Cycles      map[BillingCycle]CycleOption // replaced wholesale when non-nil
	Trial       *TrialPolicy
	Features    *FeatureLimits // replaced wholesale when non-nil
	Active      *bool
	Public      *bool
	Popular     *bool
}

// Catalog manages the plan catalog and enforces its invariants.
// Safe for concurrent use.
type Catalog struct {
	store  Store
	logger *slog.Logger

	// Serializes SetRecommended so no two plans ever observe the flag
	// simultaneously, even when the store cannot guarantee cross-record
	// atomicity on its own.
	recommendMu sync.Mutex
}

// NewCatalog creates a catalog service backed by the given store.
// Panics if store is nil to fail fast during initialization.
func NewCatalog(store Store, opts ...CatalogOption) *Catalog {
	if store == nil {
		panic("plan: store is required")
	}

	c := &Catalog{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create validates the plan, assigns an ID and initial version, and stores it.
func (c *Catalog) Create(ctx context.Context, p Plan) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Recommended = false // only settable through SetRecommended

	if err := c.store.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a plan by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*Plan, error) {
	return c.store.Get(ctx, id)
}

// GetByName retrieves a plan by name.
func (c *Catalog) GetByName(ctx context.Context, name string) (*Plan, error) {
	return c.store.GetByName(ctx, name)
}

// Update applies a patch to an existing plan and bumps its version. The
// write is version-checked, so a competing update surfaces ErrVersionConflict
// instead of silently winning; the store also preserves the stored
// recommended flag, so a patch racing SetRecommended cannot resurrect it.
// Existing subscription snapshots are never touched: subscribers keep the
// attributes copied at creation or plan-change time.
func (c *Catalog) Update(ctx context.Context, id string, patch Patch) (*Plan, error) {
	p, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Cycles != nil {
		p.Cycles = patch.Cycles
	}
	if patch.Trial != nil {
		p.Trial = *patch.Trial
	}
	if patch.Features != nil {
		p.Features = patch.Features.Clone()
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Public != nil {
		p.Public = *patch.Public
	}
	if patch.Popular != nil {
		p.Popular = *patch.Popular
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	expected := p.Version
	p.Version++
	p.UpdatedAt = time.Now().UTC()

	if err := c.store.Update(ctx, p, expected); err != nil {
		return nil, err
	}
	return p, nil
}

// SetRecommended marks the given plan as the single recommended plan.
// Clear and set are serialized so concurrent calls cannot leave two plans
// both reporting recommended.
func (c *Catalog) SetRecommended(ctx context.Context, id string) error {
	c.recommendMu.Lock()
	defer c.recommendMu.Unlock()

	if _, err := c.store.Get(ctx, id); err != nil {
		return err
	}
	if err := c.store.SetRecommended(ctx, id); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "recommended plan changed", logger.PlanID(id))
	return nil
}

// Deactivate soft-retires a plan. The caller passes the current count of
// active subscriptions referencing the plan; deactivation is rejected while
// any remain. Plans are never hard-deleted.
func (c *Catalog) Deactivate(ctx context.Context, id string, activeSubscribers int64) error {
	if activeSubscribers > 0 {
		return errors.Join(ErrActiveSubscribers,
			fmt.Errorf("plan %s has %d active subscribers", id, activeSubscribers))
	}

	p, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return nil // already retired
	}

	expected := p.Version
	p.Active = false
	p.Version++
	p.UpdatedAt = time.Now().UTC()

	if err := c.store.Update(ctx, p, expected); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "plan deactivated", logger.PlanID(id))
	return nil
}

// List returns active plans. Private plans are only included when
// includePrivate is true.
func (c *Catalog) List(ctx context.Context, includePrivate bool) ([]Plan, error) {
	all, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Plan, 0, len(all))
	for _, p := range all {
		if !p.Active {
			continue
		}
		if !p.Public && !includePrivate {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
