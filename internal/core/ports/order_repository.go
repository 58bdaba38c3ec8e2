package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status and assignment state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns the complete order with its current status and assignment.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetFirstInPendingStatus retrieves the oldest order still awaiting
	// dispatch. Used by the dispatch sweep to pick up the next order.
	GetFirstInPendingStatus(ctx context.Context) (*order.Order, error)

	// GetAllInStatus retrieves all orders currently in the given status.
	GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}
