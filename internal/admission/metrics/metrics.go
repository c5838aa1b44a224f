package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Outcomes    *prometheus.CounterVec
	FailOpen    *prometheus.CounterVec
	AutoBlocks  *prometheus.CounterVec
	ScreenHits  *prometheus.CounterVec
	PassSeconds prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_admission_outcomes_total",
			Help: "Terminal admission states by scope and outcome",
		}, []string{"scope", "outcome"}),
		FailOpen: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_admission_fail_open_total",
			Help: "Requests admitted because a trust-layer dependency could not answer",
		}, []string{"component"}),
		AutoBlocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_admission_auto_blocks_total",
			Help: "Source addresses blocked automatically, by trigger",
		}, []string{"source"}),
		ScreenHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_admission_screen_hits_total",
			Help: "Requests rejected by the malicious-input screen, by pattern",
		}, []string{"pattern"}),
		PassSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_admission_pass_duration_seconds",
			Help:    "Time spent in the admission pipeline before handoff",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
	}
}

func (m *Metrics) ObserveOutcome(scope, outcome string) {
	m.Outcomes.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) IncrementFailOpen(component string) {
	m.FailOpen.WithLabelValues(component).Inc()
}

func (m *Metrics) IncrementAutoBlock(source string) {
	m.AutoBlocks.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementScreenHit(pattern string) {
	m.ScreenHits.WithLabelValues(pattern).Inc()
}

func (m *Metrics) ObservePass(seconds float64) {
	m.PassSeconds.Observe(seconds)
}
