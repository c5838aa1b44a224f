// Package publisher is the audit sink used by the request path. Recording
// never fails or blocks the caller; persistence problems surface in logs
// and metrics only.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	dErrors "inkwell/pkg/domain-errors"
	audit "inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/audit/metrics"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/platform/tracer"
	"inkwell/pkg/platform/validation"
)

// Mirror receives a copy of every security event after it is accepted.
type Mirror interface {
	Mirror(ctx context.Context, event audit.Event) error
}

// Sink captures audit events. It is append-only and delegates persistence
// to an audit.Store so tests can swap backends easily.
type Sink struct {
	store   audit.Store
	mirror  Mirror
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
	timeout time.Duration

	events chan audit.Event
	async  bool
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// Option configures the Sink.
type Option func(*Sink)

// WithAsyncBuffer enables async persistence with the given buffer size.
// Events arriving while the buffer is full are dropped and counted.
func WithAsyncBuffer(size int) Option {
	return func(s *Sink) {
		if size > 0 {
			s.events = make(chan audit.Event, size)
			s.async = true
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sink) {
		s.metrics = m
	}
}

// WithTracer emits an audit.persist span per store write.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Sink) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMirror forwards security events to m (for example a Kafka topic).
func WithMirror(m Mirror) Option {
	return func(s *Sink) {
		s.mirror = m
	}
}

// WithClock overrides the clock used for CreatedAt and retention cutoffs.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPersistTimeout bounds each store write. Default 2s.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Sink over store.
func New(store audit.Store, opts ...Option) (*Sink, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	s := &Sink{
		store:   store,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		now:     time.Now,
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.async {
		s.wg.Add(1)
		go s.processEvents()
	}
	return s, nil
}

// Record assigns the event ID and timestamp, overwriting anything the
// caller supplied, then persists the event. It never returns an error.
func (s *Sink) Record(ctx context.Context, event audit.Event) {
	event.ID = ulid.Make().String()
	event.CreatedAt = s.now().UTC()
	if event.Category == "" {
		event.Category = audit.CategoryDomain
	}
	if s.metrics != nil {
		s.metrics.EventsRecorded.WithLabelValues(string(event.Category)).Inc()
	}
	if event.Category == audit.CategorySecurity && s.mirror != nil {
		if err := s.mirror.Mirror(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit mirror failed", "action", event.Action, "error", err)
			if s.metrics != nil {
				s.metrics.MirrorFailures.Inc()
			}
		}
	}

	if s.async {
		s.enqueue(ctx, event)
		return
	}
	s.persist(context.WithoutCancel(ctx), event)
}

func (s *Sink) enqueue(ctx context.Context, event audit.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.persist(context.WithoutCancel(ctx), event)
		return
	}
	select {
	case s.events <- event:
		if s.metrics != nil {
			s.metrics.QueueDepth.Set(float64(len(s.events)))
		}
	default:
		s.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"category", string(event.Category),
		)
		if s.metrics != nil {
			s.metrics.EventsDropped.Inc()
		}
	}
}

// processEvents runs in a goroutine and persists events from the channel.
func (s *Sink) processEvents() {
	defer s.wg.Done()
	for event := range s.events {
		s.persist(context.Background(), event)
		if s.metrics != nil {
			s.metrics.QueueDepth.Set(float64(len(s.events)))
		}
	}
}

func (s *Sink) persist(ctx context.Context, event audit.Event) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuditPersist,
		tracer.String(tracer.AttrAuditAction, event.Action),
		tracer.String(tracer.AttrAuditCat, string(event.Category)),
	)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.store.Append(ctx, event)
	span.End(err)
	if s.metrics != nil {
		s.metrics.PersistDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"category", string(event.Category),
			"source_prefix", privacy.AnonymizeIP(event.SourceAddress),
		)
		if s.metrics != nil {
			s.metrics.PersistFailures.Inc()
		}
	}
}

// Close stops accepting async events and waits for the buffer to drain.
// Records after Close are written synchronously.
func (s *Sink) Close() {
	if !s.async {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	s.wg.Wait()
}

// BySubject returns the newest events attributed to subjectID.
func (s *Sink) BySubject(ctx context.Context, subjectID string, limit int) ([]audit.Event, error) {
	events, err := s.store.ListBySubject(ctx, subjectID, validation.ClampQueryLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit events")
	}
	return events, nil
}

// ByResource returns the newest events touching (resource, resourceID).
func (s *Sink) ByResource(ctx context.Context, resource, resourceID string, limit int) ([]audit.Event, error) {
	events, err := s.store.ListByResource(ctx, resource, resourceID, validation.ClampQueryLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit events")
	}
	return events, nil
}

// SecurityEventsSince returns security events recorded at or after since.
func (s *Sink) SecurityEventsSince(ctx context.Context, since time.Time, limit int) ([]audit.Event, error) {
	events, err := s.store.ListSecuritySince(ctx, since, validation.ClampQueryLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit events")
	}
	return events, nil
}

// Prune deletes events older than now minus retention.
func (s *Sink) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "retention must be positive")
	}
	removed, err := s.store.DeleteBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to prune audit events")
	}
	if s.metrics != nil {
		s.metrics.EventsPruned.Add(float64(removed))
	}
	return removed, nil
}
