// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Each lifecycle transition gets its own nullable timestamp column so the
// full dispatch timeline of an order survives restarts.
type OrderDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourierID   *uuid.UUID `gorm:"type:uuid;index"`
	PickupLat   float64    `gorm:"type:double precision;not null"`
	PickupLon   float64    `gorm:"type:double precision;not null"`
	DropoffLat  float64    `gorm:"type:double precision;not null"`
	DropoffLon  float64    `gorm:"type:double precision;not null"`
	Status      int        `gorm:"type:smallint;not null;index"`
	PendingAt   *time.Time `gorm:"index"`
	OfferedAt   *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	UnmatchedAt *time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// transitionColumns maps lifecycle statuses to their DTO timestamp slots.
func transitionColumns(dto *OrderDTO) map[order.Status]**time.Time {
	return map[order.Status]**time.Time{
		order.StatusPending:   &dto.PendingAt,
		order.StatusOffered:   &dto.OfferedAt,
		order.StatusAssigned:  &dto.AssignedAt,
		order.StatusPickedUp:  &dto.PickedUpAt,
		order.StatusDelivered: &dto.DeliveredAt,
		order.StatusCancelled: &dto.CancelledAt,
		order.StatusUnmatched: &dto.UnmatchedAt,
	}
}

// fromDomain converts an order domain aggregate to its database representation.
// Maps all order attributes including optional courier assignment and the
// per-transition timestamps.
func fromDomain(aggregate *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	dto := OrderDTO{
		ID:         aggregate.ID().Bytes(),
		CourierID:  courierID,
		PickupLat:  aggregate.Pickup().Latitude(),
		PickupLon:  aggregate.Pickup().Longitude(),
		DropoffLat: aggregate.Dropoff().Latitude(),
		DropoffLon: aggregate.Dropoff().Longitude(),
		Status:     int(aggregate.Status()),
	}

	for status, slot := range transitionColumns(&dto) {
		if at, ok := aggregate.TransitionAt(status); ok {
			stamped := at
			*slot = &stamped
		}
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including status, courier assignment,
// and transition history using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		courierID = &cID
	}

	pickup, err := kernel.NewLocation(dto.PickupLat, dto.PickupLon)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewLocation(dto.DropoffLat, dto.DropoffLon)
	if err != nil {
		return nil, err
	}

	transitions := make(map[order.Status]time.Time)
	for status, slot := range transitionColumns(&dto) {
		if *slot != nil {
			transitions[status] = **slot
		}
	}

	return order.RestoreOrder(id, pickup, dropoff, order.Status(dto.Status), courierID, transitions)
}
