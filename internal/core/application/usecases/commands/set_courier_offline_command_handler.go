package commands

import (
	"context"

	"dispatch/internal/core/domain/services"
)

// SetCourierOfflineCommandHandler processes couriers going offline. The
// availability transition is applied in memory first, the courier leaves
// the geo index so no further offers find them, and the final state is
// written through.
type SetCourierOfflineCommandHandler struct {
	uowFactory CourierUoWFactory
	registry   *services.AvailabilityRegistry
	geoIndex   *services.GeoIndex
}

// NewSetCourierOfflineCommandHandler creates a handler for couriers going
// offline.
func NewSetCourierOfflineCommandHandler(
	uowFactory CourierUoWFactory,
	registry *services.AvailabilityRegistry,
	geoIndex *services.GeoIndex,
) SetCourierOfflineCommandHandler {
	return SetCourierOfflineCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
		geoIndex:   geoIndex,
	}
}

// Handle processes the transition. Going offline while already Offline is
// idempotent; going offline from Offered or Busy is rejected by the
// availability state machine.
func (h SetCourierOfflineCommandHandler) Handle(ctx context.Context, cmd SetCourierOfflineCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.registry.SetOffline(cmd.CourierID()); err != nil {
		return err
	}
	h.geoIndex.Remove(cmd.CourierID())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stored, err := h.registry.Aggregate(cmd.CourierID())
	if err != nil {
		return err
	}

	if err = uow.CourierRepository().Update(ctx, stored); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
