// Package courier provides domain entities and business logic for courier
// management in the dispatch engine. It implements the Courier aggregate root
// with availability state management and location tracking.
//
// The package includes:
//   - Courier: The aggregate root managing identity, availability, location, and stats
//   - Status: A state machine enforcing valid availability transitions
//   - VehicleType: Vehicle categorization driving assumed average speeds
//
// Key business rules:
//   - Availability follows Offline -> Available -> Offered -> Busy -> Available
//   - A courier holds at most one pending offer at a time
//   - Location samples apply last-write-wins by timestamp; stale samples are dropped
//   - Release is idempotent and never brings an offline courier online
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package courier
