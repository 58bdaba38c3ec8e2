package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/timer"
)

// DefaultOfferTTL is the default response window for an extended offer.
const DefaultOfferTTL = 15 * time.Second

// Dispatcher errors.
var (
	// ErrOrderAlreadyDispatching is returned when Dispatch is called for an
	// order that already has an active dispatch loop.
	ErrOrderAlreadyDispatching = errors.New("order is already being dispatched")
)

// DispatchStore persists order and offer state transitions driven by the
// dispatcher. Implementations write through to durable storage before the
// corresponding event is published.
type DispatchStore interface {
	SaveOrder(ctx context.Context, o *order.Order) error
	SaveOffer(ctx context.Context, of *offer.Offer) error
}

// EventPublisher delivers domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// OfferNotifier pushes an extended offer to the courier's device channel.
type OfferNotifier interface {
	NotifyOffer(ctx context.Context, of *offer.Offer, o *order.Order) error
}

// Dispatcher runs the offer protocol: for each order it ranks candidate
// couriers once, then walks the candidate list sequentially, extending one
// time-boxed offer at a time until a courier accepts or the list is
// exhausted and the order is marked Unmatched.
//
// Concurrency model:
//   - dispatcher-wide state (the active order and offer lookup tables) is
//     guarded by mu and only held for map access, never across I/O
//   - each order's dispatch progress lives in a dispatchState with its own
//     lock; accept, decline, expiry, and cancel for one order serialize on
//     that lock, so the first resolution of an offer wins and every later
//     one observes offer.ErrStaleOffer
//   - the courier side of the race is closed by the registry: MarkOffered
//     claims an Available courier atomically, so two dispatch loops can
//     never hold offers to the same courier
//
// Expiry timers fire on the scheduler's goroutine with a background
// context; persistence failures there are logged and the protocol advances
// regardless, favoring liveness of the dispatch loop over strict
// write-through ordering.
type Dispatcher struct {
	registry  *AvailabilityRegistry
	geoIndex  *GeoIndex
	policy    MatchingPolicy
	store     DispatchStore
	publisher EventPublisher
	notifier  OfferNotifier
	scheduler timer.Scheduler
	offerTTL  time.Duration
	clock     func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	active  map[string]*dispatchState // keyed by order id
	byOffer map[string]*dispatchState // keyed by pending offer id
}

// dispatchState tracks one order's walk through its candidate list.
type dispatchState struct {
	mu         sync.Mutex
	order      *order.Order
	candidates []RankedCandidate
	next       int
	attempted  int
	offer      *offer.Offer
	timer      timer.Timer
	done       bool
}

// NewDispatcher creates a Dispatcher.
//
// Parameters:
//   - registry: live courier availability state
//   - geoIndex: latest courier positions for candidate discovery
//   - policy: ranking policy applied once per dispatch
//   - store: write-through persistence for orders and offers
//   - publisher: domain event sink
//   - notifier: courier-facing offer push channel
//   - scheduler: expiry timer source (wall clock in production, manual in tests)
//   - offerTTL: response window per offer; non-positive falls back to DefaultOfferTTL
//   - logger: structured logger, nil falls back to slog.Default
func NewDispatcher(
	registry *AvailabilityRegistry,
	geoIndex *GeoIndex,
	policy MatchingPolicy,
	store DispatchStore,
	publisher EventPublisher,
	notifier OfferNotifier,
	scheduler timer.Scheduler,
	offerTTL time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if offerTTL <= 0 {
		offerTTL = DefaultOfferTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry:  registry,
		geoIndex:  geoIndex,
		policy:    policy,
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		scheduler: scheduler,
		offerTTL:  offerTTL,
		clock:     time.Now,
		logger:    logger,
		active:    make(map[string]*dispatchState),
		byOffer:   make(map[string]*dispatchState),
	}
}

// Dispatch starts the offer protocol for a pending order.
//
// Candidates are discovered around the pickup location and ranked once; the
// snapshot is then walked sequentially. If no candidate qualifies, the order
// is marked Unmatched immediately; that outcome is not an error.
//
// Returns:
//   - ErrOrderAlreadyDispatching if a dispatch loop for the order exists
//   - persistence or transition errors from the first offer attempt
func (d *Dispatcher) Dispatch(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	neighbors := d.geoIndex.Query(o.Pickup(), d.policy.MaxRadiusKm(), 0)
	candidates := d.policy.Rank(d.assembleCandidates(neighbors))

	st := &dispatchState{
		order:      o,
		candidates: candidates,
	}

	d.mu.Lock()
	key := o.ID().String()
	if _, exists := d.active[key]; exists {
		d.mu.Unlock()
		return ErrOrderAlreadyDispatching
	}
	d.active[key] = st
	d.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()
	return d.offerNext(ctx, st)
}

// Accept resolves an offer as accepted and assigns the order.
//
// Returns:
//   - offer.ErrStaleOffer if the offer already resolved or is unknown;
//     callers treat this as "keep waiting, nothing changed"
//   - offer.ErrCourierMismatch if the courier does not hold this offer
func (d *Dispatcher) Accept(ctx context.Context, offerID kernel.UUID, courierID kernel.UUID) error {
	st := d.stateByOffer(offerID)
	if st == nil {
		return offer.ErrStaleOffer
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.offer == nil || !st.offer.ID().IsEqual(offerID) {
		return offer.ErrStaleOffer
	}
	if err := st.offer.Accept(courierID, d.clock()); err != nil {
		return err
	}
	d.stopTimer(st)

	if err := st.order.Assign(courierID); err != nil {
		return err
	}
	if err := d.registry.MarkBusy(courierID); err != nil {
		return err
	}

	if err := d.store.SaveOffer(ctx, st.offer); err != nil {
		return err
	}
	if err := d.store.SaveOrder(ctx, st.order); err != nil {
		return err
	}

	d.publish(ctx, events.OrderAssigned{
		OrderID:   st.order.ID(),
		CourierID: courierID,
		Pickup:    st.order.Pickup(),
		Dropoff:   st.order.Dropoff(),
	})

	d.finish(st)
	return nil
}

// Decline resolves an offer as declined, releases the courier, and advances
// to the next candidate.
//
// Returns:
//   - offer.ErrStaleOffer if the offer already resolved or is unknown
//   - offer.ErrCourierMismatch if the courier does not hold this offer
func (d *Dispatcher) Decline(ctx context.Context, offerID kernel.UUID, courierID kernel.UUID) error {
	st := d.stateByOffer(offerID)
	if st == nil {
		return offer.ErrStaleOffer
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.offer == nil || !st.offer.ID().IsEqual(offerID) {
		return offer.ErrStaleOffer
	}
	if err := st.offer.Decline(courierID, d.clock()); err != nil {
		return err
	}
	d.stopTimer(st)
	d.resolveAndAdvance(ctx, st)
	return nil
}

// Cancel voids the order's active dispatch, if any.
//
// A pending offer is expired, its courier released, and the loop stopped.
// Returns (false, nil) when the order has no active dispatch loop; the
// caller then cancels the order through storage alone.
func (d *Dispatcher) Cancel(ctx context.Context, orderID kernel.UUID) (bool, error) {
	d.mu.Lock()
	st, ok := d.active[orderID.String()]
	d.mu.Unlock()
	if !ok {
		return false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.done {
		return false, nil
	}

	if st.offer != nil {
		if err := st.offer.Expire(d.clock()); err == nil {
			d.stopTimer(st)
			d.releaseCourier(st.offer.CourierID())
			if err := d.store.SaveOffer(ctx, st.offer); err != nil {
				return true, err
			}
		}
	}

	if err := st.order.Cancel(); err != nil {
		return true, err
	}
	if err := d.store.SaveOrder(ctx, st.order); err != nil {
		return true, err
	}

	var courierID *kernel.UUID
	if st.offer != nil {
		id := st.offer.CourierID()
		courierID = &id
	}
	d.publish(ctx, events.OrderCancelled{
		OrderID:   st.order.ID(),
		CourierID: courierID,
	})

	d.finish(st)
	return true, nil
}

// ActiveOrders returns the number of orders with a running dispatch loop.
func (d *Dispatcher) ActiveOrders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

// expire is the timer callback for an offer's response deadline.
func (d *Dispatcher) expire(offerID kernel.UUID) {
	st := d.stateByOffer(offerID)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.offer == nil || !st.offer.ID().IsEqual(offerID) {
		return
	}
	// A response that won the race has already resolved the offer.
	if err := st.offer.Expire(d.clock()); err != nil {
		return
	}

	ctx := context.Background()
	d.resolveAndAdvance(ctx, st)
}

// resolveAndAdvance persists a declined or expired offer, releases its
// courier, and extends the next offer. Caller holds st.mu.
func (d *Dispatcher) resolveAndAdvance(ctx context.Context, st *dispatchState) {
	resolved := st.offer

	d.mu.Lock()
	delete(d.byOffer, resolved.ID().String())
	d.mu.Unlock()
	st.offer = nil
	st.timer = nil

	d.releaseCourier(resolved.CourierID())

	if err := d.store.SaveOffer(ctx, resolved); err != nil {
		d.logger.Error("failed to persist resolved offer",
			"offer_id", resolved.ID(), "status", resolved.Status(), "error", err)
	}

	if err := d.offerNext(ctx, st); err != nil {
		d.logger.Error("failed to advance dispatch",
			"order_id", st.order.ID(), "error", err)
	}
}

// offerNext extends an offer to the next claimable candidate, or marks the
// order Unmatched when the list is exhausted. Caller holds st.mu.
func (d *Dispatcher) offerNext(ctx context.Context, st *dispatchState) error {
	for st.next < len(st.candidates) {
		candidate := st.candidates[st.next]
		st.next++

		// The candidate may have gone offline, been claimed by another
		// order, or gone busy since the ranking snapshot.
		if err := d.registry.MarkOffered(candidate.CourierID); err != nil {
			continue
		}

		if err := st.order.MarkOffered(); err != nil {
			d.releaseCourier(candidate.CourierID)
			return err
		}

		now := d.clock()
		of, err := offer.NewOffer(kernel.NewUUID(), st.order.ID(), candidate.CourierID, now, d.offerTTL)
		if err != nil {
			d.releaseCourier(candidate.CourierID)
			return err
		}

		st.offer = of
		st.attempted++
		d.mu.Lock()
		d.byOffer[of.ID().String()] = st
		d.mu.Unlock()

		if err := d.store.SaveOrder(ctx, st.order); err != nil {
			return err
		}
		if err := d.store.SaveOffer(ctx, of); err != nil {
			return err
		}

		d.publish(ctx, events.OfferExtended{
			OfferID:   of.ID(),
			OrderID:   st.order.ID(),
			CourierID: candidate.CourierID,
			ExpiresAt: of.ExpiresAt(),
		})
		if err := d.notifier.NotifyOffer(ctx, of, st.order); err != nil {
			d.logger.Error("failed to notify courier of offer",
				"offer_id", of.ID(), "courier_id", candidate.CourierID, "error", err)
		}

		offerID := of.ID()
		st.timer = d.scheduler.AfterFunc(d.offerTTL, func() {
			d.expire(offerID)
		})
		return nil
	}

	return d.markUnmatched(ctx, st)
}

// markUnmatched terminates the dispatch loop without an assignment.
// Caller holds st.mu.
func (d *Dispatcher) markUnmatched(ctx context.Context, st *dispatchState) error {
	if err := st.order.MarkUnmatched(); err != nil {
		return err
	}
	if err := d.store.SaveOrder(ctx, st.order); err != nil {
		return err
	}

	d.publish(ctx, events.OrderUnmatched{
		OrderID:   st.order.ID(),
		Attempted: st.attempted,
	})

	d.finish(st)
	return nil
}

// assembleCandidates joins geo index neighbors with registry views.
func (d *Dispatcher) assembleCandidates(neighbors []CourierDistance) []CandidateCourier {
	candidates := make([]CandidateCourier, 0, len(neighbors))
	for _, n := range neighbors {
		view, err := d.registry.View(n.CourierID)
		if err != nil {
			// Courier left the registry since the sample was indexed.
			if errors.Is(err, errs.ErrObjectNotFound) {
				continue
			}
			d.logger.Error("failed to view courier", "courier_id", n.CourierID, "error", err)
			continue
		}
		candidates = append(candidates, CandidateCourier{
			CourierID:      n.CourierID,
			Status:         view.Status,
			DistanceKm:     n.DistanceKm,
			AcceptanceRate: view.AcceptanceRate,
		})
	}
	return candidates
}

// stateByOffer looks up the dispatch state holding a pending offer.
func (d *Dispatcher) stateByOffer(offerID kernel.UUID) *dispatchState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byOffer[offerID.String()]
}

// finish removes the state from both lookup tables. Caller holds st.mu.
func (d *Dispatcher) finish(st *dispatchState) {
	st.done = true
	d.mu.Lock()
	delete(d.active, st.order.ID().String())
	if st.offer != nil {
		delete(d.byOffer, st.offer.ID().String())
	}
	d.mu.Unlock()
}

// stopTimer cancels the pending expiry timer, if any. Caller holds st.mu.
func (d *Dispatcher) stopTimer(st *dispatchState) {
	if st.timer != nil {
		st.timer.Cancel()
		st.timer = nil
	}
}

// releaseCourier releases a courier, logging instead of failing when the
// courier has meanwhile left the registry.
func (d *Dispatcher) releaseCourier(courierID kernel.UUID) {
	if err := d.registry.Release(courierID); err != nil {
		d.logger.Warn("failed to release courier", "courier_id", courierID, "error", err)
	}
}

// publish sends a domain event, logging delivery failures. Event delivery
// is at-least-once from the caller's perspective only when the publisher
// succeeds; a failed publish never rolls back the state transition.
func (d *Dispatcher) publish(ctx context.Context, event events.DomainEvent) {
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Error("failed to publish event", "event", event.EventName(), "error", err)
	}
}
