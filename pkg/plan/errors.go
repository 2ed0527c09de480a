package plan

import "errors"

var (
	// ErrPlanNotFound is returned when no plan exists for the given ID.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidPlan indicates the plan definition failed validation.
	ErrInvalidPlan = errors.New("invalid plan definition")

	// ErrPlanInactive is returned when an operation requires an active plan.
	ErrPlanInactive = errors.New("plan is not active")

	// ErrActiveSubscribers is returned when deactivating a plan that active
	// subscriptions still reference.
	ErrActiveSubscribers = errors.New("plan has active subscribers")

	// ErrDuplicatePlan is returned when creating a plan with an ID that
	// already exists in the catalog.
	ErrDuplicatePlan = errors.New("plan already exists")

	// ErrVersionConflict is returned when a competing update won the version
	// race. The losing update must re-read and retry, never overwrite.
	ErrVersionConflict = errors.New("plan version conflict")
)
