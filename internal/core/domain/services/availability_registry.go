package services

import (
	"sync"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// CourierView is an immutable snapshot of a courier's registry entry,
// taken under the entry lock. Ranking and queries work on views so they
// never hold a live reference into a mutable aggregate.
type CourierView struct {
	ID             kernel.UUID
	Name           string
	Vehicle        courier.VehicleType
	Status         courier.Status
	Location       *kernel.Location
	LocationSeenAt time.Time
	AcceptanceRate float64
}

// AvailabilityRegistry holds the live availability state of every known
// courier and serializes state transitions per courier. Each entry carries
// its own mutex, so transitions for different couriers never contend while
// two racing transitions for the same courier are applied one at a time,
// with the loser getting the aggregate's InvalidTransition error.
type AvailabilityRegistry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

// registryEntry pairs a courier aggregate with its transition lock.
type registryEntry struct {
	mu      sync.Mutex
	courier *courier.Courier
}

// NewAvailabilityRegistry creates an empty AvailabilityRegistry.
func NewAvailabilityRegistry() *AvailabilityRegistry {
	return &AvailabilityRegistry{
		entries: make(map[string]*registryEntry),
	}
}

// Register adds a courier to the registry. Registering an already known
// courier is a no-op; the existing entry wins so that in-flight transitions
// are never lost.
func (r *AvailabilityRegistry) Register(c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.ID().String()
	if _, ok := r.entries[key]; ok {
		return nil
	}
	r.entries[key] = &registryEntry{courier: c}
	return nil
}

// Contains reports whether the courier is known to the registry.
func (r *AvailabilityRegistry) Contains(courierID kernel.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[courierID.String()]
	return ok
}

// SetOnline transitions the courier to Available.
func (r *AvailabilityRegistry) SetOnline(courierID kernel.UUID) error {
	return r.withCourier(courierID, func(c *courier.Courier) error {
		return c.SetOnline()
	})
}

// SetOffline transitions the courier to Offline. Fails while the courier
// holds a pending offer or an active order.
func (r *AvailabilityRegistry) SetOffline(courierID kernel.UUID) error {
	return r.withCourier(courierID, func(c *courier.Courier) error {
		return c.SetOffline()
	})
}

// MarkOffered transitions the courier to Offered, claiming them for a single
// pending offer. Only an Available courier can be claimed, which is what
// prevents two concurrent dispatch loops from double-offering one courier.
func (r *AvailabilityRegistry) MarkOffered(courierID kernel.UUID) error {
	return r.withCourier(courierID, func(c *courier.Courier) error {
		return c.MarkOffered()
	})
}

// MarkBusy transitions the courier to Busy after an accepted offer.
func (r *AvailabilityRegistry) MarkBusy(courierID kernel.UUID) error {
	return r.withCourier(courierID, func(c *courier.Courier) error {
		return c.MarkBusy()
	})
}

// Release returns the courier to Available after a declined or expired
// offer or a completed delivery. Release is idempotent and keeps an
// offline courier offline.
func (r *AvailabilityRegistry) Release(courierID kernel.UUID) error {
	return r.withCourier(courierID, func(c *courier.Courier) error {
		c.Release()
		return nil
	})
}

// UpdateLocation applies a location sample to the courier with
// last-write-wins semantics.
//
// Returns:
//   - bool: true if the sample was applied, false if discarded as stale
//   - error: not-found or validation error
func (r *AvailabilityRegistry) UpdateLocation(courierID kernel.UUID, location kernel.Location, sampledAt time.Time) (bool, error) {
	var applied bool
	err := r.withCourier(courierID, func(c *courier.Courier) error {
		var applyErr error
		applied, applyErr = c.ApplyLocation(location, sampledAt)
		return applyErr
	})
	return applied, err
}

// View returns a snapshot of the courier's current state.
func (r *AvailabilityRegistry) View(courierID kernel.UUID) (CourierView, error) {
	var view CourierView
	err := r.withCourier(courierID, func(c *courier.Courier) error {
		view = snapshotCourier(c)
		return nil
	})
	return view, err
}

// Snapshot returns a view of every registered courier, in no particular
// order. Used by read queries and the stale courier sweep.
func (r *AvailabilityRegistry) Snapshot() []CourierView {
	r.mu.RLock()
	entries := make([]*registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	views := make([]CourierView, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		views = append(views, snapshotCourier(e.courier))
		e.mu.Unlock()
	}
	return views
}

// Aggregate returns a detached copy of the courier aggregate, safe to hand
// to a repository while the registry keeps mutating its own instance.
func (r *AvailabilityRegistry) Aggregate(courierID kernel.UUID) (*courier.Courier, error) {
	var copied *courier.Courier
	err := r.withCourier(courierID, func(c *courier.Courier) error {
		var restoreErr error
		copied, restoreErr = courier.RestoreCourier(
			c.ID(), c.Name(), c.Vehicle(), c.Status(),
			c.Location(), c.LocationSeenAt(),
			c.OfferedCount(), c.AcceptedCount(),
		)
		return restoreErr
	})
	return copied, err
}

// withCourier runs fn on the courier's aggregate under the entry lock.
func (r *AvailabilityRegistry) withCourier(courierID kernel.UUID, fn func(*courier.Courier) error) error {
	r.mu.RLock()
	e, ok := r.entries[courierID.String()]
	r.mu.RUnlock()

	if !ok {
		return errs.NewObjectNotFoundError("courier", courierID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.courier)
}

// snapshotCourier copies the courier's observable state. Caller holds the
// entry lock.
func snapshotCourier(c *courier.Courier) CourierView {
	view := CourierView{
		ID:             c.ID(),
		Name:           c.Name(),
		Vehicle:        c.Vehicle(),
		Status:         c.Status(),
		LocationSeenAt: c.LocationSeenAt(),
		AcceptanceRate: c.AcceptanceRate(),
	}
	if loc := c.Location(); loc != nil {
		copied := *loc
		view.Location = &copied
	}
	return view
}
