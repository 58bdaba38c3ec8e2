package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/services"
)

// ErrOrderCourierMismatch is returned when a courier reports progress on an
// order assigned to somebody else.
var ErrOrderCourierMismatch = errors.New("order is assigned to a different courier")

// MarkOrderPickedUpCommandHandler processes pickup reports from assigned
// couriers. The order transition is persisted and the tracking leg target
// switches from pickup to dropoff.
type MarkOrderPickedUpCommandHandler struct {
	uowFactory OrderUoWFactory
	tracker    *services.TrackingAggregator
}

// NewMarkOrderPickedUpCommandHandler creates a handler for pickup reports.
func NewMarkOrderPickedUpCommandHandler(uowFactory OrderUoWFactory, tracker *services.TrackingAggregator) MarkOrderPickedUpCommandHandler {
	return MarkOrderPickedUpCommandHandler{
		uowFactory: uowFactory,
		tracker:    tracker,
	}
}

// Handle processes the pickup report.
// Rejects reports from couriers other than the assignee and reports from
// orders that are not currently Assigned.
func (h MarkOrderPickedUpCommandHandler) Handle(ctx context.Context, cmd MarkOrderPickedUpCommand) error {
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
	picked, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if picked.Courier() == nil || !picked.Courier().IsEqual(cmd.CourierID()) {
		return ErrOrderCourierMismatch
	}

	if err = picked.MarkPickedUp(); err != nil {
		return err
	}

	if err = repo.Update(ctx, picked); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.tracker.MarkPickedUp(cmd.OrderID())
	return nil
}
