// Package retention prunes audit events past the retention window on a
// fixed interval.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inkwell/pkg/platform/audit/metrics"
)

// Pruner deletes audit events older than now minus retention.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// Worker runs Prune on a ticker.
type Worker struct {
	pruner    Pruner
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a retention worker. The default interval is one hour.
func New(pruner Pruner, retention time.Duration, opts ...Option) (*Worker, error) {
	if pruner == nil {
		return nil, errors.New("pruner is required")
	}
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	w := &Worker{
		pruner:    pruner,
		retention: retention,
		interval:  time.Hour,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start prunes once immediately, then on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			w.logger.Info("audit retention worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	start := time.Now()
	removed, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.Error("audit_retention_prune_failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	w.logger.Info("audit_retention_prune_completed",
		"removed", removed,
		"retention", w.retention.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// RunOnce executes a single prune and records metrics.
func (w *Worker) RunOnce(ctx context.Context) (int64, error) {
	removed, err := w.pruner.Prune(ctx, w.retention)
	if w.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		w.metrics.PruneRunsTotal.WithLabelValues(status).Inc()
	}
	return removed, err
}
