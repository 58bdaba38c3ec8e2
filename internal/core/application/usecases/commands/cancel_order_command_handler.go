package commands

import (
	"context"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler processes client cancellations.
//
// An order under active dispatch is cancelled through the dispatcher, which
// voids the pending offer and releases its courier. Otherwise the order is
// cancelled directly in storage; an assigned courier is released and the
// order untracked.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	dispatcher Dispatcher
	registry   *services.AvailabilityRegistry
	tracker    *services.TrackingAggregator
	publisher  ports.EventPublisher
}

// NewCancelOrderCommandHandler creates a handler for order cancellations.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	dispatcher Dispatcher,
	registry *services.AvailabilityRegistry,
	tracker *services.TrackingAggregator,
	publisher ports.EventPublisher,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		registry:   registry,
		tracker:    tracker,
		publisher:  publisher,
	}
}

// Handle processes the cancellation.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	handled, err := h.dispatcher.Cancel(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if handled {
		h.tracker.Untrack(cmd.OrderID())
		return nil
	}

	return h.cancelStored(ctx, cmd.OrderID())
}

// cancelStored cancels an order that has no active dispatch loop: still
// Pending, or already assigned to a courier.
func (h CancelOrderCommandHandler) cancelStored(ctx context.Context, orderID kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	cancelled, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err = cancelled.Cancel(); err != nil {
		return err
	}

	if err = repo.Update(ctx, cancelled); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if courierID := cancelled.Courier(); courierID != nil {
		if err = h.registry.Release(*courierID); err != nil {
			return err
		}
	}
	h.tracker.Untrack(orderID)

	return h.publisher.Publish(ctx, events.OrderCancelled{
		OrderID:   cancelled.ID(),
		CourierID: cancelled.Courier(),
	})
}
