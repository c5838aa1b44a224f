package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inkwell/internal/ratelimit/metrics"
)

// Result contains the results of a sweep run.
type Result struct {
	Removed  int           // Number of expired keys and windows reclaimed
	Duration time.Duration // Time taken for the run
}

// Sweeper reclaims expired entries. Only the in-process store needs this;
// Redis expires keys on its own.
type Sweeper interface {
	Sweep(ctx context.Context) (removed int, err error)
}

type Option func(*SweepService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *SweepService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *SweepService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SweepService) {
		s.metrics = m
	}
}

type SweepService struct {
	store    Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(store Sweeper, opts ...Option) (*SweepService, error) {
	if store == nil {
		return nil, errors.New("sweeper is required")
	}
	service := &SweepService{
		store:    store,
		logger:   slog.Default(),
		interval: time.Minute,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

func (s *SweepService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("shared_store_sweep_failed", "error", err)
				continue
			}
			s.logger.Debug("shared_store_sweep_completed",
				"removed", res.Removed,
				"duration_ms", res.Duration.Milliseconds(),
			)
		case <-ctx.Done():
			s.logger.Info("shared store sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep and records metrics. Logging is handled by
// the caller (Start).
func (s *SweepService) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	removed, err := s.store.Sweep(ctx)
	duration := time.Since(start)

	if s.metrics != nil {
		s.metrics.CleanupDurationSeconds.Observe(duration.Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.CleanupRunsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CleanupRunsTotal.WithLabelValues("success").Inc()
		s.metrics.CleanupRemovedTotal.Add(float64(removed))
	}
	return &Result{Removed: removed, Duration: duration}, nil
}
