package usecase

import (
	"context"
	"log/slog"
	"time"

	"flashpost/internal/ports"
)

// Runner wires the interval driver with the pipeline for poll mode.
type Runner struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewRunner returns a helper to start/stop recurring pipeline runs.
func NewRunner(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Runner {
	return &Runner{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Run errors are
// logged, never propagated: a failed poll must not stop the cadence.
func (r *Runner) Start(ctx context.Context) error {
	if r.driver == nil || r.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		outcome, err := r.pipeline.Run(ctx)
		if err != nil {
			r.logger.Error("pipeline run failed", "outcome", outcome, "error", err)
			return
		}
		r.logger.Info("pipeline run finished", "outcome", outcome)
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Runner) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}

	return r.driver.Stop(ctx)
}
