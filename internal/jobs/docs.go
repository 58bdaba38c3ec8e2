// Package jobs provides scheduled background tasks for the dispatch engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order dispatch.
//
// # Available Jobs
//
// 1. OrderDispatchJob - Runs every second to start the offer protocol for pending orders
// 2. StaleCourierJob - Runs every 30 seconds to force couriers with stale location data offline
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(dispatchHandler, sweepHandler, staleTTL, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Dispatch job ignores the empty-queue case (no pending orders)
// - Sweep job logs all errors as they indicate system issues
// - Failed job starts will stop any already running jobs
package jobs
