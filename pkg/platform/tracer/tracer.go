// Package tracer is the tracing seam for the admission path.
//
// Callers depend on the small Tracer and Span interfaces here instead of the
// OpenTelemetry API, so tests can run with NoopTracer or a recording fake and
// production wires OTelTracer against the global tracer provider.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start opens a span named name. The returned context carries it.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanRateLimitAdmit,
	//       tracer.String(tracer.AttrScope, "login"),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanRateLimitAdmit    = "ratelimit.admit"
	SpanReputationCheck   = "reputation.is_blocked"
	SpanReputationViolate = "reputation.record_violation"
	SpanAuditPersist      = "audit.persist"
)

// Attribute keys. Raw addresses never go on a span; use AttrSourcePrefix
// with an anonymized value.
const (
	AttrScope          = "ratelimit.scope"
	AttrAllowed        = "ratelimit.allowed"
	AttrDegraded       = "ratelimit.degraded"
	AttrRemaining      = "ratelimit.remaining"
	AttrRetryAfterMs   = "ratelimit.retry_after_ms"
	AttrIdentifierKind = "ratelimit.identifier_kind"
	AttrSourcePrefix   = "source.prefix"
	AttrBlocked        = "reputation.blocked"
	AttrViolations     = "reputation.violations"
	AttrAuditAction    = "audit.action"
	AttrAuditCat       = "audit.category"
)

// Event names.
const (
	EventBreakerOpen = "breaker.open"
)
