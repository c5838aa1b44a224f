package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit sink.
type Metrics struct {
	// Queue metrics
	QueueDepth    prometheus.Gauge
	EventsDropped prometheus.Counter

	// Processing metrics
	EventsRecorded  *prometheus.CounterVec
	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter
	MirrorFailures  prometheus.Counter
	MirrorDropped   prometheus.Counter

	// Retention metrics
	PruneRunsTotal *prometheus.CounterVec
	EventsPruned   prometheus.Counter
}

// New creates a new Metrics instance with all audit sink metrics registered.
func New() *Metrics {
	return &Metrics{
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "inkwell_audit_queue_depth",
			Help: "Current number of events waiting in the async audit buffer",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		}),
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_audit_events_recorded_total",
			Help: "Audit events accepted by the sink, labeled by category",
		}, []string{"category"}),
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_audit_persist_duration_seconds",
			Help:    "Time taken to persist an audit event to the store",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		MirrorFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_audit_mirror_failures_total",
			Help: "Total number of security events the Kafka mirror failed to enqueue",
		}),
		MirrorDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_audit_mirror_dropped_total",
			Help: "Total number of security events dropped because the Kafka buffer was full",
		}),
		PruneRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_audit_prune_runs_total",
			Help: "Retention prune runs labeled by status",
		}, []string{"status"}),
		EventsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_audit_events_pruned_total",
			Help: "Total number of audit events removed by retention",
		}),
	}
}
