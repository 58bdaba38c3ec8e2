package offer

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the resolution state of an offer.
//
// State transitions:
//
//	Pending ──> Accepted
//	   ├──────> Declined
//	   └──────> Expired
//
// Accepted, Declined, and Expired are terminal. An offer resolves exactly
// once; the first resolution wins and later attempts see a stale offer.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending means the offer is extended and awaiting the courier's
	// response or expiry.
	StatusPending

	// StatusAccepted means the courier accepted the offer. Terminal.
	StatusAccepted

	// StatusDeclined means the courier declined the offer. Terminal.
	StatusDeclined

	// StatusExpired means the response deadline passed. Terminal.
	StatusExpired
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:  "Unknown",
		StatusPending:  "Pending",
		StatusAccepted: "Accepted",
		StatusDeclined: "Declined",
		StatusExpired:  "Expired",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:  "Pending",
		StatusAccepted: "Accepted",
		StatusDeclined: "Declined",
		StatusExpired:  "Expired",
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

// IsResolved reports whether the status is terminal.
func (s Status) IsResolved() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusExpired
}
