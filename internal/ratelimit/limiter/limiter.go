// Package limiter implements the sliding-window admission check on top of
// the shared store.
package limiter

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"time"

	"github.com/oklog/ulid/v2"

	"inkwell/internal/ratelimit/metrics"
	"inkwell/internal/ratelimit/models"
	"inkwell/internal/sharedstore"
	"inkwell/pkg/platform/circuit"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/platform/tracer"
)

//go:generate mockgen -source=limiter.go -destination=mocks/mocks.go -package=mocks

// WindowStore is the subset of the shared store the limiter uses.
type WindowStore interface {
	SlideWindow(ctx context.Context, key string, window time.Duration, member string, capacity int) (*sharedstore.WindowState, error)
	RemoveMember(ctx context.Context, key, member string) error
}

// Limiter admits or rejects requests per (scope, identifier).
type Limiter struct {
	store   WindowStore
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	timeout time.Duration
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithTracer emits a span per Admit.
func WithTracer(t tracer.Tracer) Option {
	return func(l *Limiter) {
		if t != nil {
			l.tracer = t
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(l *Limiter) {
		if b != nil {
			l.breaker = b
		}
	}
}

// WithStoreTimeout bounds each store call. Default 250ms.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// New creates a Limiter over store.
func New(store WindowStore, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("window store is required")
	}
	l := &Limiter{
		store:   store,
		breaker: circuit.New("ratelimit-store"),
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		timeout: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Admit records one attempt for (scope, identifier) and decides it against limit.
// The attempt counts even when rejected. If the store cannot answer, the
// decision is degraded: admitted unless limit.FailClosed. Admit only returns
// an error for invalid arguments.
func (l *Limiter) Admit(ctx context.Context, scope models.Scope, identifier string, limit models.Limit) (*models.Result, error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}
	key := models.WindowKey(scope, identifier)

	ctx, span := l.tracer.Start(ctx, tracer.SpanRateLimitAdmit,
		tracer.String(tracer.AttrScope, string(scope)),
		identifierAttr(identifier),
	)
	var storeErr error
	defer func() { span.End(storeErr) }()

	if !l.breaker.Allow() {
		span.AddEvent(tracer.EventBreakerOpen)
		return l.traced(span, l.degraded(ctx, scope, identifier, limit, nil)), nil
	}

	member := ulid.Make().String()
	storeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	state, err := l.store.SlideWindow(storeCtx, key, limit.Window, member, limit.Max)
	cancel()
	if err != nil {
		storeErr = err
		l.recordFailure(ctx, "slide_window")
		return l.traced(span, l.degraded(ctx, scope, identifier, limit, err)), nil
	}
	l.recordSuccess(ctx)

	res := models.NewResult(limit, state.Count, state.ResetFrom, state.Now)
	res.Key = key
	res.Ticket = member
	if l.metrics != nil {
		outcome := "allowed"
		if !res.Allowed {
			outcome = "rejected"
		}
		l.metrics.ObserveDecision(string(scope), outcome)
	}
	return l.traced(span, res), nil
}

// identifierAttr never puts a raw address or subject ID on a span.
func identifierAttr(identifier string) tracer.Attribute {
	if _, err := netip.ParseAddr(identifier); err == nil {
		return tracer.String(tracer.AttrSourcePrefix, privacy.AnonymizeIP(identifier))
	}
	return tracer.String(tracer.AttrIdentifierKind, "subject")
}

func (l *Limiter) traced(span tracer.Span, res *models.Result) *models.Result {
	span.SetAttributes(
		tracer.Bool(tracer.AttrAllowed, res.Allowed),
		tracer.Bool(tracer.AttrDegraded, res.Degraded),
		tracer.Int64(tracer.AttrRemaining, int64(res.Remaining)),
		tracer.Duration(tracer.AttrRetryAfterMs, res.RetryAfter),
	)
	return res
}

// Retract removes the window entry recorded by Admit for res. Degraded
// results carry no entry and are ignored. Failures are logged, not returned:
// a retraction that does not land only makes the limit stricter.
func (l *Limiter) Retract(ctx context.Context, scope models.Scope, res *models.Result) {
	if res == nil || res.Degraded || res.Ticket == "" {
		return
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()
	if err := l.store.RemoveMember(storeCtx, res.Key, res.Ticket); err != nil {
		l.recordFailure(ctx, "remove_member")
		l.logger.WarnContext(ctx, "rate limit retraction failed", "scope", scope, "error", err)
		return
	}
	if l.metrics != nil {
		l.metrics.IncrementRetraction(string(scope))
	}
}

func (l *Limiter) degraded(ctx context.Context, scope models.Scope, identifier string, limit models.Limit, cause error) *models.Result {
	res := models.DegradedResult(limit, requesttime.Now(ctx))
	outcome := "degraded_allowed"
	if !res.Allowed {
		outcome = "degraded_rejected"
	}
	attrs := []any{
		"scope", scope,
		"identifier_prefix", privacy.AnonymizeIP(identifier),
		"fail_closed", limit.FailClosed,
		"breaker", l.breaker.State().String(),
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	l.logger.ErrorContext(ctx, "rate limit store unavailable, deciding without it", attrs...)
	if l.metrics != nil {
		l.metrics.ObserveDecision(string(scope), outcome)
	}
	return res
}

func (l *Limiter) recordFailure(ctx context.Context, op string) {
	if l.metrics != nil {
		l.metrics.IncrementStoreFailure(op)
	}
	if change := l.breaker.RecordFailure(); change.Opened {
		l.logger.WarnContext(ctx, "rate limit circuit breaker opened", "breaker", l.breaker.Name())
		if l.metrics != nil {
			l.metrics.SetBreakerOpen(l.breaker.Name(), true)
		}
	}
}

func (l *Limiter) recordSuccess(ctx context.Context) {
	if change := l.breaker.RecordSuccess(); change.Closed {
		l.logger.InfoContext(ctx, "rate limit circuit breaker closed", "breaker", l.breaker.Name())
		if l.metrics != nil {
			l.metrics.SetBreakerOpen(l.breaker.Name(), false)
		}
	}
}
