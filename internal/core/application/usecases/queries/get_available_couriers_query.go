package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetAvailableCouriersQueryIsNotConstructed = errors.New(
		"GetAvailableCouriersQuery must be created via NewGetAvailableCouriersQuery constructor",
	)
)

// GetAvailableCouriersQuery retrieves couriers currently accepting offers,
// with their last persisted location. Couriers that are offline, holding a
// pending offer, or working an order are excluded.
//
// Example:
//
//	query := NewGetAvailableCouriersQuery()
//	handler := NewGetAvailableCouriersQueryHandler(db)
//
//	couriers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve couriers: %w", err)
//	}
type GetAvailableCouriersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableCouriersQuery creates a query to retrieve available couriers.
// This is a parameterless query that fetches the complete available set.
func NewGetAvailableCouriersQuery() GetAvailableCouriersQuery {
	return GetAvailableCouriersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAvailableCouriersQueryIsNotConstructed if validation fails.
func (q GetAvailableCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableCouriersQueryIsNotConstructed)
}

// GetAvailableCouriersQueryResponse represents an available courier in the
// read model. Location is nil for couriers that never reported a position.
type GetAvailableCouriersQueryResponse struct {
	ID             kernel.UUID
	Name           string
	Vehicle        courier.VehicleType
	Location       *kernel.Location
	LocationSeenAt time.Time
}
