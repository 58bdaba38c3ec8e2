package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// StaleCourierJob periodically forces couriers with stale location data
// offline so they stop receiving offers.
type StaleCourierJob struct {
	handler  commands.SweepStaleCouriersCommandHandler
	staleTTL time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewStaleCourierJob creates a job that sweeps stale couriers every 30 seconds.
// Couriers whose last location sample is older than staleTTL go offline.
func NewStaleCourierJob(
	handler commands.SweepStaleCouriersCommandHandler,
	staleTTL time.Duration,
	logger *slog.Logger,
) *StaleCourierJob {
	return &StaleCourierJob{
		handler:  handler,
		staleTTL: staleTTL,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "stale_courier_job"),
	}
}

// Start begins the sweep job to run every 30 seconds.
func (j *StaleCourierJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewSweepStaleCouriersCommand(j.staleTTL)
		if err != nil {
			j.logger.ErrorContext(ctx, "Stale courier sweep misconfigured", "error", err)
			return
		}

		if err = j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stale courier sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale courier job started (running every 30 seconds)")
	return nil
}

// Stop stops the sweep job.
func (j *StaleCourierJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale courier job stopped")
}
