// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// The location columns are nullable: a courier that never reported a position
// has no sample to store.
type CourierDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Vehicle        int       `gorm:"type:smallint;not null"`
	Status         int       `gorm:"type:smallint;not null;index"`
	LocationLat    *float64  `gorm:"type:double precision"`
	LocationLon    *float64  `gorm:"type:double precision"`
	LocationSeenAt *time.Time
	OfferedCount   int `gorm:"not null;default:0"`
	AcceptedCount  int `gorm:"not null;default:0"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(courier *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:            courier.ID().Bytes(),
		Name:          courier.Name(),
		Vehicle:       int(courier.Vehicle()),
		Status:        int(courier.Status()),
		OfferedCount:  courier.OfferedCount(),
		AcceptedCount: courier.AcceptedCount(),
	}

	if loc := courier.Location(); loc != nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		seenAt := courier.LocationSeenAt()
		dto.LocationLat = &lat
		dto.LocationLon = &lon
		dto.LocationSeenAt = &seenAt
	}

	return dto
}

// toDomain converts a database DTO to a courier domain aggregate.
// Reconstructs the complete aggregate including availability state and
// acceptance statistics using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	var seenAt time.Time
	if dto.LocationLat != nil && dto.LocationLon != nil {
		loc, locErr := kernel.NewLocation(*dto.LocationLat, *dto.LocationLon)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
		if dto.LocationSeenAt != nil {
			seenAt = *dto.LocationSeenAt
		}
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		courier.VehicleType(dto.Vehicle),
		courier.Status(dto.Status),
		location,
		seenAt,
		dto.OfferedCount,
		dto.AcceptedCount,
	)
}
