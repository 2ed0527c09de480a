package plan

import "context"

// Store defines the interface for plan catalog persistence.
type Store interface {
	// Create inserts a new plan. Returns ErrDuplicatePlan if the ID is taken.
	Create(ctx context.Context, p *Plan) error

	// Update replaces an existing plan, but only while its stored version
	// still equals expectedVersion. Returns ErrVersionConflict when another
	// writer got there first, ErrPlanNotFound when the plan does not exist.
	// The recommended flag is owned by SetRecommended and is preserved as
	// stored, so a stale update can never resurrect it.
	Update(ctx context.Context, p *Plan, expectedVersion int64) error

	// Get retrieves a plan by ID. Returns ErrPlanNotFound if no plan exists.
	Get(ctx context.Context, id string) (*Plan, error)

	// GetByName retrieves a plan by its unique name.
	// Returns ErrPlanNotFound if no plan exists.
	GetByName(ctx context.Context, name string) (*Plan, error)

	// List returns all plans in the catalog.
	List(ctx context.Context) ([]Plan, error)

	// SetRecommended marks the given plan as recommended and clears the flag
	// on every other plan. The store must apply clear and set as one atomic
	// step with respect to concurrent SetRecommended calls.
	SetRecommended(ctx context.Context, id string) error
}
