package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OrderDispatchJob sweeps the pending order queue. Runs every second and
// starts the offer protocol for the oldest order still awaiting dispatch.
type OrderDispatchJob struct {
	handler commands.DispatchOrderCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOrderDispatchJob creates a job that dispatches pending orders every second.
func NewOrderDispatchJob(handler commands.DispatchOrderCommandHandler, logger *slog.Logger) *OrderDispatchJob {
	return &OrderDispatchJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "order_dispatch_job"),
	}
}

// Start begins the dispatch job to run every second.
func (j *OrderDispatchJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewDispatchOrderCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			// An empty pending queue is the normal idle state, not a failure.
			if !errors.Is(err, commands.ErrNoOrderFound) {
				j.logger.ErrorContext(ctx, "Order dispatch job failed", "error", err)
			}
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order dispatch job started (running every second)")
	return nil
}

// Stop stops the dispatch job.
func (j *OrderDispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Order dispatch job stopped")
}
