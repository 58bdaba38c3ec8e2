package commands

import (
	"context"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CompleteOrderCommandHandler processes delivery reports. The order becomes
// Delivered, the courier is released back to Available (with refreshed
// acceptance statistics written through), tracking stops, and an
// OrderDelivered event is published.
type CompleteOrderCommandHandler struct {
	uowFactory UoWFactory
	registry   *services.AvailabilityRegistry
	tracker    *services.TrackingAggregator
	publisher  ports.EventPublisher
}

// NewCompleteOrderCommandHandler creates a handler for delivery reports.
func NewCompleteOrderCommandHandler(
	uowFactory UoWFactory,
	registry *services.AvailabilityRegistry,
	tracker *services.TrackingAggregator,
	publisher ports.EventPublisher,
) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
		tracker:    tracker,
		publisher:  publisher,
	}
}

// Handle processes the delivery report.
// Rejects reports from couriers other than the assignee.
func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	delivered, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if delivered.Courier() == nil || !delivered.Courier().IsEqual(cmd.CourierID()) {
		return ErrOrderCourierMismatch
	}

	if err = delivered.MarkDelivered(); err != nil {
		return err
	}

	if err = repo.Update(ctx, delivered); err != nil {
		return err
	}

	if err = h.registry.Release(cmd.CourierID()); err != nil {
		return err
	}

	released, err := h.registry.Aggregate(cmd.CourierID())
	if err != nil {
		return err
	}
	if err = uow.CourierRepository().Update(ctx, released); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.tracker.Untrack(cmd.OrderID())

	return h.publisher.Publish(ctx, events.OrderDelivered{
		OrderID:   cmd.OrderID(),
		CourierID: cmd.CourierID(),
	})
}
