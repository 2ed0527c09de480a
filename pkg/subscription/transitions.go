package subscription

import "errors"

// Lifecycle operations checked against the transition table.
const (
	opActivate   = "activate"
	opCancel     = "cancel"
	opSuspend    = "suspend"
	opReactivate = "reactivate"
	opChangePlan = "change plan"
	opRenew      = "renew"
)

// transitionSources maps each lifecycle operation to the statuses it may be
// invoked from. An operation invoked from any other status is rejected with
// an InvalidTransitionError and leaves the record untouched.
var transitionSources = map[string]map[Status]bool{
	// Any non-terminal status except active itself. Re-activating an active
	// subscription is a precondition error, not a silent no-op.
	opActivate: {
		StatusTrial:               true,
		StatusInactive:            true,
		StatusSuspended:           true,
		StatusPendingPayment:      true,
		StatusPendingCancellation: true,
	},
	// Any non-terminal status.
	opCancel: {
		StatusTrial:               true,
		StatusActive:              true,
		StatusInactive:            true,
		StatusSuspended:           true,
		StatusPendingPayment:      true,
		StatusPendingCancellation: true,
	},
	opSuspend: {
		StatusTrial:  true,
		StatusActive: true,
	},
	// Suspension is the only state reactivation recovers from.
	opReactivate: {
		StatusSuspended: true,
	},
	// Any non-terminal status; the status itself is left unchanged.
	opChangePlan: {
		StatusTrial:               true,
		StatusActive:              true,
		StatusInactive:            true,
		StatusSuspended:           true,
		StatusPendingPayment:      true,
		StatusPendingCancellation: true,
	},
	// Renewal is the universal "make current" operation: it resurrects
	// suspended, expired, and lapsed subscriptions. Cancelled is the one
	// exception, since cancellation is an explicit customer decision.
	opRenew: {
		StatusTrial:               true,
		StatusActive:              true,
		StatusInactive:            true,
		StatusSuspended:           true,
		StatusExpired:             true,
		StatusPendingPayment:      true,
		StatusPendingCancellation: true,
	},
}

// checkTransition returns nil when op may be invoked from the given status.
func checkTransition(op string, from Status) error {
	if transitionSources[op][from] {
		return nil
	}
	if op == opActivate && from == StatusActive {
		return errors.Join(ErrPrecondition, ErrAlreadyActive)
	}
	if op == opRenew && from == StatusCancelled {
		return errors.Join(ErrPrecondition, ErrRenewCancelled)
	}
	return &InvalidTransitionError{From: from, Op: op}
}
