package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/services"
)

// SweepStaleCouriersCommandHandler takes Available couriers offline when
// their location telemetry went silent. Couriers holding an offer or an
// active order are left alone; the offer protocol resolves them on its own
// timeline.
type SweepStaleCouriersCommandHandler struct {
	uowFactory CourierUoWFactory
	registry   *services.AvailabilityRegistry
	geoIndex   *services.GeoIndex
	logger     *slog.Logger
}

// NewSweepStaleCouriersCommandHandler creates a handler for stale sweeps.
// A nil logger falls back to slog.Default.
func NewSweepStaleCouriersCommandHandler(
	uowFactory CourierUoWFactory,
	registry *services.AvailabilityRegistry,
	geoIndex *services.GeoIndex,
	logger *slog.Logger,
) SweepStaleCouriersCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return SweepStaleCouriersCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
		geoIndex:   geoIndex,
		logger:     logger,
	}
}

// Handle runs one sweep pass. Individual courier failures are logged and
// the sweep moves on; the pass itself only fails on transaction errors.
func (h SweepStaleCouriersCommandHandler) Handle(ctx context.Context, cmd SweepStaleCouriersCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cutoff := time.Now().Add(-cmd.StaleTTL())

	for _, view := range h.registry.Snapshot() {
		if view.Status != courier.StatusAvailable {
			continue
		}
		if view.Location == nil || view.LocationSeenAt.After(cutoff) {
			continue
		}

		if err := h.takeOffline(ctx, view); err != nil {
			h.logger.Warn("failed to take stale courier offline",
				"courier_id", view.ID, "error", err)
		}
	}
	return nil
}

func (h SweepStaleCouriersCommandHandler) takeOffline(ctx context.Context, view services.CourierView) error {
	if err := h.registry.SetOffline(view.ID); err != nil {
		return err
	}
	h.geoIndex.Remove(view.ID)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stored, err := h.registry.Aggregate(view.ID)
	if err != nil {
		return err
	}
	if err = uow.CourierRepository().Update(ctx, stored); err != nil {
		return err
	}

	h.logger.Info("stale courier taken offline",
		"courier_id", view.ID, "last_seen", view.LocationSeenAt)
	return uow.Commit(ctx)
}
