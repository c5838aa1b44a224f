package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions              *prometheus.CounterVec
	StoreFailures          *prometheus.CounterVec
	BreakerState           *prometheus.GaugeVec
	Retractions            *prometheus.CounterVec
	GlobalThrottled        prometheus.Counter
	CleanupRunsTotal       *prometheus.CounterVec
	CleanupRemovedTotal    prometheus.Counter
	CleanupDurationSeconds prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_decisions_total",
			Help: "Rate limit decisions by scope and outcome (allowed, rejected, degraded_allowed, degraded_rejected)",
		}, []string{"scope", "outcome"}),
		StoreFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_store_failures_total",
			Help: "Shared store failures seen by the limiter",
		}, []string{"operation"}),
		BreakerState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inkwell_ratelimit_circuit_open",
			Help: "1 when the limiter circuit breaker is open",
		}, []string{"breaker"}),
		Retractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_retractions_total",
			Help: "Window entries retracted after a successful count-only-failures request",
		}, []string{"scope"}),
		GlobalThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_global_throttled_total",
			Help: "Requests shed by the per-instance global throttle",
		}),
		CleanupRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_cleanup_runs_total",
			Help: "Total number of shared store sweep runs",
		}, []string{"status"}),
		CleanupRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_cleanup_removed_total",
			Help: "Expired keys reclaimed by the shared store sweep",
		}),
		CleanupDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "inkwell_ratelimit_cleanup_duration_seconds",
			Help: "Duration of shared store sweep runs in seconds",
		}),
	}
}

func (m *Metrics) ObserveDecision(scope, outcome string) {
	m.Decisions.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) IncrementStoreFailure(operation string) {
	m.StoreFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

func (m *Metrics) IncrementRetraction(scope string) {
	m.Retractions.WithLabelValues(scope).Inc()
}
