package courier

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the availability state of a courier.
// It implements a state machine with defined transitions so that a courier
// can never be double-booked.
//
// State transitions:
//
//	Offline ──> Available ──> Offered ──> Busy
//	    ^           ^  ^          │        │
//	    │           │  └──────────┘        │
//	    │           │  (decline/timeout)   │
//	    │           └──────────────────────┘
//	    │                (delivery done)
//	    └── from Available only
//
// Status is a value object that validates state transitions and provides
// string representations for persistence and display.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusOffline means the courier is not participating in dispatch.
	// This is the initial status of every courier.
	StatusOffline

	// StatusAvailable means the courier is online and eligible for offers.
	StatusAvailable

	// StatusOffered means the courier currently holds one pending offer.
	// A courier in this status receives no further offers.
	StatusOffered

	// StatusBusy means the courier has accepted an order and is delivering it.
	StatusBusy
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "Unknown",
		StatusOffline:   "Offline",
		StatusAvailable: "Available",
		StatusOffered:   "Offered",
		StatusBusy:      "Busy",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusOffline:   "Offline",
		StatusAvailable: "Available",
		StatusOffered:   "Offered",
		StatusBusy:      "Busy",
	}
}

// Validate checks if the Status value is valid.
//
// Valid statuses are: Offline, Available, Offered, Busy.
// Unknown (0) and any other values are invalid.
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

// invalidTransition builds the InvalidTransition error for a rejected edge.
func (s Status) invalidTransition(target Status) error {
	return errs.NewValueIsInvalidErrorWithCause("status transition is invalid",
		fmt.Errorf("%s -> %s is not a valid transition", s, target))
}

// Online transitions the status to Available.
//
// Valid transitions:
//   - Offline -> Available (courier goes online)
//   - Available -> Available (idempotent repeat)
//
// Returns:
//   - (Available, nil) on valid transition
//   - (0, error) if the courier is holding an offer or an order
func (s Status) Online() (Status, error) {
	if s != StatusOffline && s != StatusAvailable {
		return 0, s.invalidTransition(StatusAvailable)
	}
	return StatusAvailable, nil
}

// Offline transitions the status to Offline.
//
// Valid transitions:
//   - Available -> Offline
//   - Offline -> Offline (idempotent repeat)
//
// A courier holding a pending offer or an active order cannot go offline;
// the offer must be resolved or the delivery completed first.
func (s Status) Offline() (Status, error) {
	if s != StatusAvailable && s != StatusOffline {
		return 0, s.invalidTransition(StatusOffline)
	}
	return StatusOffline, nil
}

// Offered transitions the status to Offered.
//
// Valid transitions:
//   - Available -> Offered
//
// Any other source status is rejected: a courier can hold at most one
// pending offer, and offline or busy couriers receive none.
func (s Status) Offered() (Status, error) {
	if s != StatusAvailable {
		return 0, s.invalidTransition(StatusOffered)
	}
	return StatusOffered, nil
}

// Busy transitions the status to Busy.
//
// Valid transitions:
//   - Offered -> Busy (the held offer was accepted)
//
// Going Busy without holding an offer is rejected - acceptance is only
// meaningful for the courier the offer was extended to.
func (s Status) Busy() (Status, error) {
	if s != StatusOffered {
		return 0, s.invalidTransition(StatusBusy)
	}
	return StatusBusy, nil
}

// Released transitions the status back to Available.
//
// Valid transitions:
//   - Offered -> Available (offer declined or expired)
//   - Busy -> Available (delivery finished or order cancelled)
//   - Available -> Available (idempotent repeat)
//   - Offline -> Offline (idempotent no-op, courier stays offline)
//
// Released never fails: release is idempotent by contract so that racing
// resolutions of the same offer cannot corrupt courier state.
func (s Status) Released() Status {
	if s == StatusOffline {
		return StatusOffline
	}
	return StatusAvailable
}
