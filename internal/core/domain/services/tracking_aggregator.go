package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// Tracking aggregator default tunables.
const (
	// DefaultMinMoveMeters is the movement threshold below which a sample
	// does not trigger an update on its own.
	DefaultMinMoveMeters = 20.0
	// DefaultMinInterval is the heartbeat interval after which a sample
	// triggers an update even without meaningful movement.
	DefaultMinInterval = 5 * time.Second
)

// TrackingAggregator turns the raw location stream of assigned couriers
// into throttled TrackingUpdate events with remaining distance and ETA.
//
// An order is tracked from assignment until it reaches a terminal state.
// While the order is Assigned the leg target is the pickup location; after
// MarkPickedUp it is the dropoff. Samples for couriers with no tracked
// order are silently ignored, as are stale samples.
//
// Throttling: an update is emitted when the courier moved at least the
// movement threshold since the last emit, or when the heartbeat interval
// elapsed, whichever comes first.
type TrackingAggregator struct {
	publisher     EventPublisher
	minMoveMeters float64
	minInterval   time.Duration
	logger        *slog.Logger

	mu        sync.Mutex
	byOrder   map[string]*trackedLeg
	byCourier map[string]*trackedLeg
}

// trackedLeg is the tracking state of one assigned order.
type trackedLeg struct {
	orderID   kernel.UUID
	courierID kernel.UUID
	vehicle   courier.VehicleType
	pickup    kernel.Location
	dropoff   kernel.Location
	pickedUp  bool

	lastLoc    *kernel.Location
	lastAt     time.Time
	lastEmitLo *kernel.Location
	lastEmitAt time.Time
}

// NewTrackingAggregator creates a TrackingAggregator.
//
// Non-positive thresholds fall back to the defaults. A nil logger falls
// back to slog.Default.
func NewTrackingAggregator(publisher EventPublisher, minMoveMeters float64, minInterval time.Duration, logger *slog.Logger) *TrackingAggregator {
	if minMoveMeters <= 0 {
		minMoveMeters = DefaultMinMoveMeters
	}
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingAggregator{
		publisher:     publisher,
		minMoveMeters: minMoveMeters,
		minInterval:   minInterval,
		logger:        logger,
		byOrder:       make(map[string]*trackedLeg),
		byCourier:     make(map[string]*trackedLeg),
	}
}

// Track registers an assigned order for tracking. The first location sample
// after Track always emits an update.
func (t *TrackingAggregator) Track(o *order.Order, courierID kernel.UUID, vehicle courier.VehicleType) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !o.Status().IsActivelyTracked() {
		return errs.NewValueIsInvalidError("order is not in a tracked status")
	}

	leg := &trackedLeg{
		orderID:   o.ID(),
		courierID: courierID,
		vehicle:   vehicle,
		pickup:    o.Pickup(),
		dropoff:   o.Dropoff(),
		pickedUp:  o.Status() == order.StatusPickedUp,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.byOrder[o.ID().String()] = leg
	t.byCourier[courierID.String()] = leg
	return nil
}

// MarkPickedUp switches the order's leg target from pickup to dropoff.
// Unknown orders are ignored.
func (t *TrackingAggregator) MarkPickedUp(orderID kernel.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if leg, ok := t.byOrder[orderID.String()]; ok {
		leg.pickedUp = true
	}
}

// Untrack stops tracking an order. Called when the order reaches a terminal
// state. Untracking an unknown order is a no-op.
func (t *TrackingAggregator) Untrack(orderID kernel.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if leg, ok := t.byOrder[orderID.String()]; ok {
		delete(t.byOrder, orderID.String())
		delete(t.byCourier, leg.courierID.String())
	}
}

// Tracked returns the number of currently tracked orders.
func (t *TrackingAggregator) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byOrder)
}

// Update feeds a courier location sample into the aggregator.
//
// Samples for couriers without a tracked order and samples older than the
// last applied one are silently ignored. When the throttle allows, a
// TrackingUpdate event with remaining distance and ETA is published.
func (t *TrackingAggregator) Update(ctx context.Context, courierID kernel.UUID, location kernel.Location, sampledAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	leg, ok := t.byCourier[courierID.String()]
	if !ok {
		return
	}
	if leg.lastLoc != nil && !sampledAt.After(leg.lastAt) {
		return
	}

	loc := location
	leg.lastLoc = &loc
	leg.lastAt = sampledAt

	if !t.shouldEmit(leg, location, sampledAt) {
		return
	}

	target := leg.dropoff
	if !leg.pickedUp {
		target = leg.pickup
	}
	distanceKm := location.DistanceKmTo(target)
	etaSeconds := int(distanceKm / leg.vehicle.DefaultSpeedKmh() * 3600)

	if err := t.publisher.Publish(ctx, events.TrackingUpdate{
		OrderID:            leg.orderID,
		CourierID:          leg.courierID,
		Location:           location,
		DistanceToTargetKm: distanceKm,
		EtaSeconds:         etaSeconds,
		SampledAt:          sampledAt,
	}); err != nil {
		t.logger.Error("failed to publish tracking update",
			"order_id", leg.orderID, "error", err)
		return
	}

	emitted := location
	leg.lastEmitLo = &emitted
	leg.lastEmitAt = sampledAt
}

// shouldEmit applies the movement/heartbeat throttle.
func (t *TrackingAggregator) shouldEmit(leg *trackedLeg, location kernel.Location, sampledAt time.Time) bool {
	if leg.lastEmitLo == nil {
		return true
	}
	if location.DistanceMetersTo(*leg.lastEmitLo) >= t.minMoveMeters {
		return true
	}
	return sampledAt.Sub(leg.lastEmitAt) >= t.minInterval
}
