package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// Janitor periodically purges expired uploads and reports the number of live sessions.
type Janitor struct {
	repo     Interface        // Repository to purge
	clock    clockwork.Clock  // Time source for the ticker
	interval time.Duration    // Interval between purges
	metrics  *metrics.Metrics // Metrics for the active sessions gauge
	log      *slog.Logger     // Logger for janitor activity
}

// NewJanitor creates a new Janitor. A nil clock uses the real clock.
func NewJanitor(
	repo Interface,
	clock clockwork.Clock,
	interval time.Duration,
	metrics *metrics.Metrics,
	log *slog.Logger,
) *Janitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Janitor{repo: repo, clock: clock, interval: interval, metrics: metrics, log: log}
}

// Run purges expired uploads on every tick until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.InfoContext(ctx, "Upload janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.log.InfoContext(ctx, "Upload janitor stopped.")
			return
		case <-ticker.Chan():
			live := j.repo.Purge(ctx)
			j.metrics.ActiveSessions.Set(float64(live))
			j.log.DebugContext(ctx, "Upload janitor pass finished", "sessions", live)
		}
	}
}
