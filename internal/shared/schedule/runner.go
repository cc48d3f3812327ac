// Package schedule provides a small helper for running a job at a fixed interval.
package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Job is a unit of work invoked on every tick.
type Job func(ctx context.Context) error

// RunEvery runs job immediately, then once per interval, until ctx is cancelled.
// Job errors are logged and do not stop the loop.
func RunEvery(ctx context.Context, interval time.Duration, name string, job Job) {
	run := func() {
		if err := job(ctx); err != nil {
			slog.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		slog.Info("scheduled job finished", "job", name)
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped", "job", name)
			return
		case <-ticker.C:
			run()
		}
	}
}
