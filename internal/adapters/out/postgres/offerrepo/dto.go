// Package offerrepo provides data transfer objects and mapping functions for offer persistence.
// Every offer the dispatcher extends is written through, resolved offers
// included, so the table doubles as an audit trail of the offer protocol.
package offerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

// OfferDTO represents the database structure for persisting offers.
// ResolvedAt is null while the offer is still pending.
type OfferDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CourierID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     int       `gorm:"type:smallint;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	ResolvedAt *time.Time
}

// TableName specifies the database table name for offer entities.
// Overrides GORM's default naming convention to use "offers".
func (OfferDTO) TableName() string {
	return "offers"
}

// fromDomain converts an offer to its database representation.
func fromDomain(aggregate *offer.Offer) OfferDTO {
	return OfferDTO{
		ID:         aggregate.ID().Bytes(),
		OrderID:    aggregate.OrderID().Bytes(),
		CourierID:  aggregate.CourierID().Bytes(),
		Status:     int(aggregate.Status()),
		CreatedAt:  aggregate.CreatedAt(),
		ExpiresAt:  aggregate.ExpiresAt(),
		ResolvedAt: aggregate.ResolvedAt(),
	}
}

// toDomain converts a database DTO to an offer using RestoreOffer.
func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	return offer.RestoreOffer(
		id,
		orderID,
		courierID,
		offer.Status(dto.Status),
		dto.CreatedAt,
		dto.ExpiresAt,
		dto.ResolvedAt,
	)
}
