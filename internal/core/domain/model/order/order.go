package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory methods.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order represents a delivery order moving through the dispatch workflow.
// It is the aggregate root that manages the order lifecycle from creation
// through offer, assignment, and delivery.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and valid pickup/dropoff locations
//   - Holds at most one courier reference, set only on assignment
//   - Status transitions are monotonic except cancellation
//   - Records the timestamp of every status transition
//   - Can only be created through its constructors
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// courierID is the assigned courier's ID (nil until assigned)
	courierID *kernel.UUID

	// pickup is where the courier collects the package
	pickup kernel.Location

	// dropoff is the delivery destination
	dropoff kernel.Location

	// status represents the current state in the order lifecycle
	status Status

	// transitions records when each status was entered
	transitions map[Status]time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in Pending status with validation.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - pickup: Pickup location with validated coordinates
//   - dropoff: Dropoff location with validated coordinates
//
// Returns:
//   - *Order: The created order if all validations pass
//   - error: Validation error if any parameter is invalid
//
// Example:
//
//	pickup, _ := kernel.NewLocation(12.36, -1.53)
//	dropoff, _ := kernel.NewLocation(12.40, -1.50)
//	order, err := NewOrder(kernel.NewUUID(), pickup, dropoff)
func NewOrder(id kernel.UUID, pickup kernel.Location, dropoff kernel.Location) (*Order, error) {
	o := &Order{
		status:        StatusPending,
		transitions:   map[Status]time.Time{StatusPending: time.Now()},
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// including its status, courier assignment, and transition timestamps.
//
// Parameters:
//   - id: Unique identifier
//   - pickup, dropoff: Validated locations
//   - status: Persisted lifecycle status
//   - courierID: Assigned courier, nil if unassigned
//   - transitions: Per-status entry timestamps (copied; may be nil)
//
// Returns:
//   - *Order: Restored order aggregate
//   - error: Validation error if any parameter is invalid or the courier
//     reference is inconsistent with the status
func RestoreOrder(
	id kernel.UUID,
	pickup kernel.Location,
	dropoff kernel.Location,
	status Status,
	courierID *kernel.UUID,
	transitions map[Status]time.Time,
) (*Order, error) {
	o := &Order{
		transitions:   make(map[Status]time.Time, len(transitions)),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setStatus(status),
		o.setCourier(courierID),
	); err != nil {
		return nil, err
	}

	for s, at := range transitions {
		o.transitions[s] = at
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
// Returns ErrOrderIsNotConstructed otherwise. Should be called when
// reconstructing orders from persistence to ensure data integrity.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Pickup returns the pickup location.
func (o *Order) Pickup() kernel.Location {
	return o.pickup
}

// Dropoff returns the delivery destination.
func (o *Order) Dropoff() kernel.Location {
	return o.dropoff
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID, or nil if unassigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// TransitionAt returns the time the order entered the given status and
// whether that transition has happened.
func (o *Order) TransitionAt(status Status) (time.Time, bool) {
	at, ok := o.transitions[status]
	return at, ok
}

// MarkOffered records that a pending offer is extended for this order.
// Valid from Pending (first candidate) and Offered (next candidate).
func (o *Order) MarkOffered() error {
	newStatus, err := o.status.Offer()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	return nil
}

// Assign assigns the order to the courier whose offer was accepted and
// updates the status to Assigned.
//
// Business rules:
//   - The courier ID must be valid
//   - The order must be in Offered status (the offer protocol is the only
//     path to assignment)
func (o *Order) Assign(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	o.courierID = &courierID
	return nil
}

// MarkPickedUp records that the assigned courier collected the package.
// Valid only from Assigned.
func (o *Order) MarkPickedUp() error {
	newStatus, err := o.status.PickUp()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	return nil
}

// MarkDelivered records a completed delivery. Valid only from PickedUp.
// Delivered is a terminal state.
func (o *Order) MarkDelivered() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	return nil
}

// Cancel cancels the order. Valid from any non-terminal status; the caller
// is responsible for voiding a pending offer and releasing a held courier.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	return nil
}

// MarkUnmatched records that dispatch exhausted all candidates.
// Valid from Pending and Offered. Unmatched is terminal for the engine;
// an external scheduler decides whether to re-queue the order.
func (o *Order) MarkUnmatched() error {
	newStatus, err := o.status.Unmatch()
	if err != nil {
		return err
	}

	o.setStatusWithTimestamp(newStatus)
	return nil
}

// setStatusWithTimestamp applies a validated transition and records its time.
func (o *Order) setStatusWithTimestamp(status Status) {
	o.status = status
	o.transitions[status] = time.Now()
}

// setID validates and sets the order's unique identifier.
// This is a private method used only during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setPickup validates and sets the pickup location.
// This is a private method used only during construction.
func (o *Order) setPickup(pickup kernel.Location) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	o.pickup = pickup
	return nil
}

// setDropoff validates and sets the dropoff location.
// This is a private method used only during construction.
func (o *Order) setDropoff(dropoff kernel.Location) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	o.dropoff = dropoff
	return nil
}

// setStatus validates and sets the status during restoration.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setCourier validates the courier reference against the current status.
// Orders at or past Assigned must reference a courier; earlier and
// unmatched/cancelled-before-assignment orders must not.
func (o *Order) setCourier(courierID *kernel.UUID) error {
	if courierID == nil {
		if o.status == StatusAssigned || o.status == StatusPickedUp || o.status == StatusDelivered {
			return errs.NewValueIsRequiredError("courier for assigned order")
		}
		return nil
	}

	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.status == StatusPending || o.status == StatusOffered || o.status == StatusUnmatched {
		return errs.NewValueIsInvalidError("courier set before assignment")
	}

	o.courierID = courierID
	return nil
}
