package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure orders
// follow the correct dispatch workflow.
//
// State transitions:
//
//	Pending ──> Offered ──> Assigned ──> PickedUp ──> Delivered
//	   │           │ │
//	   │           └─┘ (next candidate)
//	   ├───────────┴──> Unmatched   (candidates exhausted)
//	   └── any non-terminal ──> Cancelled
//
// Delivered, Cancelled, and Unmatched are terminal. Transitions are
// monotonic except cancellation, which is reachable from any non-terminal
// state.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status of a created order awaiting dispatch.
	StatusPending

	// StatusOffered means a pending offer is extended to a candidate courier.
	StatusOffered

	// StatusAssigned means a courier accepted the offer and is heading to pickup.
	StatusAssigned

	// StatusPickedUp means the assigned courier collected the package.
	StatusPickedUp

	// StatusDelivered means the order was delivered. Terminal.
	StatusDelivered

	// StatusCancelled means the client cancelled the order. Terminal.
	StatusCancelled

	// StatusUnmatched means dispatch exhausted all candidates without an
	// acceptance. Terminal for the engine; re-dispatch is an external decision.
	StatusUnmatched
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "Unknown",
		StatusPending:   "Pending",
		StatusOffered:   "Offered",
		StatusAssigned:  "Assigned",
		StatusPickedUp:  "PickedUp",
		StatusDelivered: "Delivered",
		StatusCancelled: "Cancelled",
		StatusUnmatched: "Unmatched",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:   "Pending",
		StatusOffered:   "Offered",
		StatusAssigned:  "Assigned",
		StatusPickedUp:  "PickedUp",
		StatusDelivered: "Delivered",
		StatusCancelled: "Cancelled",
		StatusUnmatched: "Unmatched",
	}
}

// Validate checks if the Status value is valid.
// Unknown (0) and any other values outside the defined set are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusUnmatched
}

// IsActivelyTracked reports whether the order is in a status where courier
// location updates produce tracking output.
func (s Status) IsActivelyTracked() bool {
	return s == StatusAssigned || s == StatusPickedUp
}

// invalidTransition builds the InvalidTransition error for a rejected edge.
func (s Status) invalidTransition(target Status) error {
	return errs.NewValueIsInvalidErrorWithCause("status transition is invalid",
		fmt.Errorf("%s -> %s is not a valid transition", s, target))
}

// Offer transitions the status to Offered.
//
// Valid transitions:
//   - Pending -> Offered (first candidate)
//   - Offered -> Offered (next candidate after decline/expiry)
func (s Status) Offer() (Status, error) {
	if s != StatusPending && s != StatusOffered {
		return 0, s.invalidTransition(StatusOffered)
	}
	return StatusOffered, nil
}

// Assign transitions the status to Assigned.
//
// Valid transitions:
//   - Offered -> Assigned (the held offer was accepted)
//
// Assignment without an extended offer is rejected: the offer protocol is
// the only path to a courier assignment.
func (s Status) Assign() (Status, error) {
	if s != StatusOffered {
		return 0, s.invalidTransition(StatusAssigned)
	}
	return StatusAssigned, nil
}

// PickUp transitions the status to PickedUp.
//
// Valid transitions:
//   - Assigned -> PickedUp
func (s Status) PickUp() (Status, error) {
	if s != StatusAssigned {
		return 0, s.invalidTransition(StatusPickedUp)
	}
	return StatusPickedUp, nil
}

// Deliver transitions the status to Delivered.
//
// Valid transitions:
//   - PickedUp -> Delivered
func (s Status) Deliver() (Status, error) {
	if s != StatusPickedUp {
		return 0, s.invalidTransition(StatusDelivered)
	}
	return StatusDelivered, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid from any non-terminal status. Cancelling a terminal order is
// rejected so that a finished delivery cannot be retroactively voided.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() || s.Validate() != nil {
		return 0, s.invalidTransition(StatusCancelled)
	}
	return StatusCancelled, nil
}

// Unmatch transitions the status to Unmatched.
//
// Valid transitions:
//   - Pending -> Unmatched (no candidates at all)
//   - Offered -> Unmatched (all candidates declined or timed out)
func (s Status) Unmatch() (Status, error) {
	if s != StatusPending && s != StatusOffered {
		return 0, s.invalidTransition(StatusUnmatched)
	}
	return StatusUnmatched, nil
}
