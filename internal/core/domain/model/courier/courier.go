package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrNoLocationKnown is returned when an operation needs the courier's
	// position but no location sample has been reported yet.
	ErrNoLocationKnown = errors.New("courier has no known location")
)

// Courier represents a delivery courier participating in dispatch.
// It is an aggregate root that manages courier identity, availability state,
// the latest known location sample, and acceptance statistics used by the
// matching policy.
//
// Key responsibilities:
//   - Managing courier identity (ID, name, vehicle type)
//   - Enforcing the availability state machine (Offline/Available/Offered/Busy)
//   - Applying location samples with last-write-wins semantics
//   - Tracking offer acceptance statistics for ranking
//
// Business rules:
//   - Courier must have a valid UUID, non-empty name, and valid vehicle type
//   - A courier holds at most one pending offer at a time (enforced by Status)
//   - A location sample older than the stored one is discarded, not applied
//   - Release is idempotent and never takes an offline courier online
//
// Example usage:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Alice", courier.VehicleBicycle)
//	if err != nil {
//	    // Handle construction error
//	}
//	_ = c.SetOnline()
//	applied := c.ApplyLocation(loc, time.Now())
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// vehicle determines the assumed average speed for ETA estimates
	vehicle VehicleType
	// status is the current availability state
	status Status
	// location is the latest known position (nil until the first sample)
	location *kernel.Location
	// locationSeenAt is the timestamp of the latest applied sample
	locationSeenAt time.Time
	// offeredCount is the number of offers ever extended to the courier
	offeredCount int
	// acceptedCount is the number of offers the courier accepted
	acceptedCount int
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier with the specified identity.
// The courier starts Offline with no known location and zero statistics.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - vehicle: Vehicle type (must be a valid VehicleType)
//
// Returns:
//   - *Courier: A fully initialized courier
//   - error: Validation error if any parameter is invalid (aggregated for multiple issues)
func NewCourier(id kernel.UUID, name string, vehicle VehicleType) (*Courier, error) {
	c := &Courier{
		status: StatusOffline,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setVehicle(vehicle),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
// Unlike NewCourier which creates fresh offline couriers, this constructor
// restores a courier to its previously persisted state, including
// availability status, location sample, and acceptance statistics.
//
// Parameters:
//   - id: Unique identifier for the courier
//   - name: Human-readable courier name
//   - vehicle: Vehicle type
//   - status: Persisted availability status
//   - location: Latest known location, nil if never reported
//   - locationSeenAt: Timestamp of the latest sample (zero if location is nil)
//   - offeredCount, acceptedCount: Persisted acceptance statistics
//
// Returns:
//   - *Courier: Restored courier aggregate
//   - error: Validation error if any parameter is invalid
func RestoreCourier(
	id kernel.UUID,
	name string,
	vehicle VehicleType,
	status Status,
	location *kernel.Location,
	locationSeenAt time.Time,
	offeredCount int,
	acceptedCount int,
) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setVehicle(vehicle),
		c.setStatus(status),
		c.setLocation(location, locationSeenAt),
		c.setStats(offeredCount, acceptedCount),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// IsEqual compares two couriers for equality based on their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed via a constructor.
// Returns ErrCourierIsNotConstructed for nil or zero-value couriers.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// Vehicle returns the courier's vehicle type.
func (c *Courier) Vehicle() VehicleType {
	return c.vehicle
}

// Status returns the current availability status.
func (c *Courier) Status() Status {
	return c.status
}

// Location returns the latest known location sample, or nil if the courier
// has never reported a position.
func (c *Courier) Location() *kernel.Location {
	return c.location
}

// LocationSeenAt returns the timestamp of the latest applied location sample.
// The zero time means no sample has been applied.
func (c *Courier) LocationSeenAt() time.Time {
	return c.locationSeenAt
}

// OfferedCount returns the number of offers ever extended to the courier.
func (c *Courier) OfferedCount() int {
	return c.offeredCount
}

// AcceptedCount returns the number of offers the courier accepted.
func (c *Courier) AcceptedCount() int {
	return c.acceptedCount
}

// AcceptanceRate returns the fraction of extended offers the courier
// accepted, in [0, 1]. Couriers that have never been offered anything score
// a full 1.0 so that new couriers are not penalized by the matching policy.
func (c *Courier) AcceptanceRate() float64 {
	if c.offeredCount == 0 {
		return 1.0
	}
	return float64(c.acceptedCount) / float64(c.offeredCount)
}

// SetOnline transitions the courier to Available.
// Valid from Offline and Available (idempotent); a courier holding an offer
// or an order cannot toggle online.
func (c *Courier) SetOnline() error {
	newStatus, err := c.status.Online()
	if err != nil {
		return err
	}

	c.status = newStatus
	return nil
}

// SetOffline transitions the courier to Offline.
// Valid from Available and Offline (idempotent); a courier holding an offer
// or an order must be released first.
func (c *Courier) SetOffline() error {
	newStatus, err := c.status.Offline()
	if err != nil {
		return err
	}

	c.status = newStatus
	return nil
}

// MarkOffered transitions the courier to Offered and records the extended
// offer in the acceptance statistics. Valid only from Available.
func (c *Courier) MarkOffered() error {
	newStatus, err := c.status.Offered()
	if err != nil {
		return err
	}

	c.status = newStatus
	c.offeredCount++
	return nil
}

// MarkBusy transitions the courier to Busy and records the acceptance.
// Valid only from Offered.
func (c *Courier) MarkBusy() error {
	newStatus, err := c.status.Busy()
	if err != nil {
		return err
	}

	c.status = newStatus
	c.acceptedCount++
	return nil
}

// Release returns the courier to Available after a declined or expired offer
// or a finished delivery. Release is idempotent and never fails; an offline
// courier stays offline.
func (c *Courier) Release() {
	c.status = c.status.Released()
}

// ApplyLocation applies a location sample with last-write-wins semantics.
// A sample with a timestamp not newer than the stored one is discarded.
//
// Parameters:
//   - location: The sampled position (must be valid)
//   - sampledAt: The client-side timestamp of the sample
//
// Returns:
//   - bool: true if the sample was applied, false if discarded as stale
//   - error: validation error if the location is invalid
func (c *Courier) ApplyLocation(location kernel.Location, sampledAt time.Time) (bool, error) {
	if err := location.Validate(); err != nil {
		return false, err
	}

	if c.location != nil && !sampledAt.After(c.locationSeenAt) {
		return false, nil
	}

	c.location = &location
	c.locationSeenAt = sampledAt
	return true, nil
}

// EstimateTravelTime estimates the time needed to reach a target location
// based on great-circle distance and the vehicle's assumed average speed.
//
// Returns:
//   - time.Duration: estimated travel time
//   - error: ErrNoLocationKnown if the courier never reported a position,
//     or a validation error if the target is invalid
func (c *Courier) EstimateTravelTime(target kernel.Location) (time.Duration, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	if c.location == nil {
		return 0, ErrNoLocationKnown
	}

	km := c.location.DistanceKmTo(target)

	hours := km / c.vehicle.DefaultSpeedKmh()
	return time.Duration(hours * float64(time.Hour)), nil
}

// setID sets the courier's unique identifier with validation.
// This is an internal setter used during courier construction.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

// setName sets the courier's name with validation.
// This is an internal setter used during courier construction.
func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

// setVehicle sets the courier's vehicle type with validation.
// This is an internal setter used during courier construction.
func (c *Courier) setVehicle(vehicle VehicleType) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}

	c.vehicle = vehicle
	return nil
}

// setStatus sets the availability status with validation.
// Used during restoration from persistent state.
func (c *Courier) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}

// setLocation sets the location sample during restoration.
// A nil location is allowed for couriers that never reported a position.
func (c *Courier) setLocation(location *kernel.Location, seenAt time.Time) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	c.locationSeenAt = seenAt
	return nil
}

// setStats sets the acceptance statistics during restoration.
func (c *Courier) setStats(offered int, accepted int) error {
	if offered < 0 || accepted < 0 || accepted > offered {
		return errs.NewValueIsInvalidError("acceptance statistics")
	}

	c.offeredCount = offered
	c.acceptedCount = accepted
	return nil
}
