// Package order provides domain entities and business logic for order
// management in the dispatch engine. It implements the Order aggregate root
// with lifecycle management and state transitions.
//
// The package includes:
//   - Order: The aggregate root managing order identity, locations, and lifecycle
//   - Status: A state machine enforcing valid order status transitions
//
// Key business rules:
//   - Orders must have a valid unique identifier and pickup/dropoff locations
//   - Status follows Pending -> Offered -> Assigned -> PickedUp -> Delivered
//   - Cancellation is reachable from any non-terminal status
//   - Unmatched records exhausted dispatch; re-queueing is external policy
//   - Every transition is timestamped
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
