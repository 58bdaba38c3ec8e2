package commands

import (
	"context"

	"dispatch/internal/core/domain/services"
)

// ReportLocationCommandHandler feeds location samples into the hot path:
// the availability registry (per-courier latest sample), the geo index
// (radius queries for candidate discovery), and the tracking aggregator
// (ETA updates for assigned orders).
//
// Samples are kept in memory only; durable courier state is written on the
// slower availability transitions, not per sample.
type ReportLocationCommandHandler struct {
	registry *services.AvailabilityRegistry
	geoIndex *services.GeoIndex
	tracker  *services.TrackingAggregator
}

// NewReportLocationCommandHandler creates a handler for location ingress.
func NewReportLocationCommandHandler(
	registry *services.AvailabilityRegistry,
	geoIndex *services.GeoIndex,
	tracker *services.TrackingAggregator,
) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		registry: registry,
		geoIndex: geoIndex,
		tracker:  tracker,
	}
}

// Handle processes one location sample.
// A sample older than the courier's stored one is discarded everywhere and
// the handler returns without error.
func (h ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	applied, err := h.registry.UpdateLocation(cmd.CourierID(), cmd.Location(), cmd.SampledAt())
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if _, err = h.geoIndex.Upsert(cmd.CourierID(), cmd.Location(), cmd.SampledAt()); err != nil {
		return err
	}

	h.tracker.Update(ctx, cmd.CourierID(), cmd.Location(), cmd.SampledAt())
	return nil
}
