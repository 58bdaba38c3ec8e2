package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferRepository defines the persistence contract for offers. Every offer
// the dispatcher extends is written through, including resolved ones, so
// the offer table doubles as an audit trail of the protocol.
type OfferRepository interface {
	// Add persists a newly extended offer.
	Add(ctx context.Context, aggregate *offer.Offer) error

	// Update persists an offer's resolution.
	Update(ctx context.Context, aggregate *offer.Offer) error

	// Get retrieves an offer by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// GetAllForOrder retrieves every offer extended for an order, in the
	// order they were created.
	GetAllForOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.Offer, error)
}
