package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// AcceptOfferCommandHandler processes courier acceptances. The dispatcher
// resolves the offer race and assigns the order; on success the handler
// registers the assignment with the tracking aggregator so location
// samples start producing ETA updates.
type AcceptOfferCommandHandler struct {
	uowFactory UoWFactory
	dispatcher Dispatcher
	registry   *services.AvailabilityRegistry
	tracker    *services.TrackingAggregator
}

// NewAcceptOfferCommandHandler creates a handler for offer acceptances.
func NewAcceptOfferCommandHandler(
	uowFactory UoWFactory,
	dispatcher Dispatcher,
	registry *services.AvailabilityRegistry,
	tracker *services.TrackingAggregator,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		registry:   registry,
		tracker:    tracker,
	}
}

// Handle processes the acceptance.
// Stale and mismatched responses surface as the dispatcher's errors and
// leave all state untouched.
func (h AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.dispatcher.Accept(ctx, cmd.OfferID(), cmd.CourierID()); err != nil {
		return err
	}

	assigned, err := h.loadAssignedOrder(ctx, cmd)
	if err != nil {
		return err
	}

	view, err := h.registry.View(cmd.CourierID())
	if err != nil {
		return err
	}

	return h.tracker.Track(assigned, cmd.CourierID(), view.Vehicle)
}

// loadAssignedOrder re-reads the assigned order through the accepted offer.
func (h AcceptOfferCommandHandler) loadAssignedOrder(ctx context.Context, cmd AcceptOfferCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	accepted, err := uow.OfferRepository().Get(ctx, cmd.OfferID())
	if err != nil {
		return nil, err
	}

	assigned, err := uow.OrderRepository().Get(ctx, accepted.OrderID())
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return assigned, nil
}
