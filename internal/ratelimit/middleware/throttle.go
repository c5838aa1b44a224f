// Package middleware holds the per-instance global throttle that sheds load
// before any shared-store work happens.
package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"inkwell/internal/ratelimit/metrics"
	"inkwell/pkg/platform/httputil"
)

// GlobalThrottle caps the total request rate of this process with a token
// bucket. It guards the instance, not any individual client.
type GlobalThrottle struct {
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ThrottleOption configures a GlobalThrottle.
type ThrottleOption func(*GlobalThrottle)

func WithThrottleLogger(logger *slog.Logger) ThrottleOption {
	return func(t *GlobalThrottle) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithThrottleMetrics(m *metrics.Metrics) ThrottleOption {
	return func(t *GlobalThrottle) {
		t.metrics = m
	}
}

// NewGlobalThrottle returns a throttle admitting perSecond requests on
// average with the given burst. perSecond <= 0 disables throttling.
func NewGlobalThrottle(perSecond float64, burst int, opts ...ThrottleOption) *GlobalThrottle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	t := &GlobalThrottle{
		limiter: rate.NewLimiter(limit, burst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Middleware rejects with 503 once the bucket is empty.
func (t *GlobalThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter.Allow() {
			if t.metrics != nil {
				t.metrics.GlobalThrottled.Inc()
			}
			t.logger.WarnContext(r.Context(), "global throttle shedding request", "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{
				Error:            "service_unavailable",
				ErrorDescription: "Server is busy, retry shortly",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
