// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery retrieves orders currently moving through dispatch:
// offered to a candidate, assigned to a courier, or in transit after pickup.
// Terminal orders (delivered, cancelled, unmatched) and orders still waiting
// for their first dispatch pass are excluded.
//
// Example:
//
//	query := NewGetActiveOrdersQuery()
//	handler := NewGetActiveOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve active orders: %w", err)
//	}
type GetActiveOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates a query to retrieve active orders.
// This is a parameterless query that fetches the complete active set.
func NewGetActiveOrdersQuery() GetActiveOrdersQuery {
	return GetActiveOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveOrdersQueryIsNotConstructed if validation fails.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// GetActiveOrdersQueryResponse represents an active order in the read model.
// CourierID is nil while the order is only offered, not yet accepted.
type GetActiveOrdersQueryResponse struct {
	ID        kernel.UUID
	CourierID *kernel.UUID
	Pickup    kernel.Location
	Dropoff   kernel.Location
	Status    order.Status
}
