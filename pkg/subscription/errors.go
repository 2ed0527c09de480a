package subscription

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine matches exactly one kind
// via errors.Is, so callers can map them to their own surfaces (the HTTP
// layer maps validation/precondition/not-found to 4xx).
var (
	// ErrValidation indicates invalid input, rejected before any mutation.
	ErrValidation = errors.New("subscription validation failed")

	// ErrPrecondition indicates the operation is not allowed in the record's
	// current state. The record is left unchanged.
	ErrPrecondition = errors.New("subscription precondition violated")

	// ErrNotFound indicates no subscription exists for the given ID.
	ErrNotFound = errors.New("subscription not found")

	// ErrConflict indicates a competing transition won the version race and
	// retries were exhausted. The losing operation must not overwrite.
	ErrConflict = errors.New("subscription version conflict")
)

// Validation errors.
var (
	ErrUserRequired     = errors.New("subscription owner is required")
	ErrUnknownCycle     = errors.New("unknown billing cycle")
	ErrUnknownStatus    = errors.New("unknown start status")
	ErrReasonTooShort   = errors.New("cancellation reason is too short")
	ErrNoteTextMissing  = errors.New("note text is required")
	ErrPlanNotTrialable = errors.New("plan has no trial policy")
)

// Precondition errors.
var (
	ErrAlreadyActive  = errors.New("subscription is already active")
	ErrRenewCancelled = errors.New("cancelled subscriptions cannot be renewed")
)

// InvalidTransitionError reports a lifecycle operation invoked from a status
// it cannot leave. Matches ErrPrecondition via errors.Is.
type InvalidTransitionError struct {
	From Status
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s subscription in status %q", e.Op, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrPrecondition
}
