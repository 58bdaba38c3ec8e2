package ports

import (
	"context"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
)

// OfferNotifier pushes an extended offer to the courier's device channel.
// The payload includes the pickup and dropoff so the courier can decide
// before accepting.
type OfferNotifier interface {
	NotifyOffer(ctx context.Context, of *offer.Offer, o *order.Order) error
}
