package events

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// DomainEvent is implemented by every event the dispatch engine emits.
// EventName is used as the message key discriminator on the bus.
type DomainEvent interface {
	EventName() string
}

// OfferExtended is emitted when the dispatcher extends an offer to a courier.
type OfferExtended struct {
	OfferID   kernel.UUID
	OrderID   kernel.UUID
	CourierID kernel.UUID
	ExpiresAt time.Time
}

// EventName returns the event discriminator.
func (OfferExtended) EventName() string { return "offer.extended" }

// OrderAssigned is emitted when a courier accepts an offer and the order
// becomes assigned to them.
type OrderAssigned struct {
	OrderID   kernel.UUID
	CourierID kernel.UUID
	Pickup    kernel.Location
	Dropoff   kernel.Location
}

// EventName returns the event discriminator.
func (OrderAssigned) EventName() string { return "order.assigned" }

// OrderUnmatched is emitted when dispatch exhausts every candidate courier
// without an acceptance.
type OrderUnmatched struct {
	OrderID kernel.UUID
	// Attempted is how many couriers were offered the order before giving up.
	Attempted int
}

// EventName returns the event discriminator.
func (OrderUnmatched) EventName() string { return "order.unmatched" }

// OrderCancelled is emitted when an active order is cancelled. CourierID is
// nil when the order had not been assigned yet.
type OrderCancelled struct {
	OrderID   kernel.UUID
	CourierID *kernel.UUID
}

// EventName returns the event discriminator.
func (OrderCancelled) EventName() string { return "order.cancelled" }

// OrderDelivered is emitted when the assigned courier completes the delivery.
type OrderDelivered struct {
	OrderID   kernel.UUID
	CourierID kernel.UUID
}

// EventName returns the event discriminator.
func (OrderDelivered) EventName() string { return "order.delivered" }

// TrackingUpdate is emitted by the tracking aggregator when an assigned
// courier moves meaningfully or the throttle interval elapses.
type TrackingUpdate struct {
	OrderID   kernel.UUID
	CourierID kernel.UUID
	Location  kernel.Location
	// DistanceToTargetKm is the remaining straight-line distance to the
	// current leg target (pickup before collection, dropoff after).
	DistanceToTargetKm float64
	// EtaSeconds is the estimated remaining travel time for the current leg.
	EtaSeconds int
	SampledAt  time.Time
}

// EventName returns the event discriminator.
func (TrackingUpdate) EventName() string { return "tracking.update" }
