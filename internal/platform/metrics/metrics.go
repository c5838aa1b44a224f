package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identity and credential metrics of the service.
type Metrics struct {
	SubjectsRegistered prometheus.Counter
	LoginAttempts      *prometheus.CounterVec
	TokensIssued       prometheus.Counter
	TokenRotations     *prometheus.CounterVec
	TokenRejections    *prometheus.CounterVec
	LogoutAll          prometheus.Counter
}

// New creates and registers all identity metrics.
func New() *Metrics {
	return &Metrics{
		SubjectsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_subjects_registered_total",
			Help: "Total number of subjects registered",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_login_attempts_total",
			Help: "Login attempts labeled by outcome (success, failure)",
		}, []string{"outcome"}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_credential_pairs_issued_total",
			Help: "Total number of access/refresh credential pairs issued",
		}),
		TokenRotations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_refresh_rotations_total",
			Help: "Refresh rotations labeled by outcome (success, revoked, reused, invalid)",
		}, []string{"outcome"}),
		TokenRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_access_token_rejections_total",
			Help: "Access credentials rejected, labeled by error code",
		}, []string{"code"}),
		LogoutAll: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_logout_all_total",
			Help: "Total number of logout-all (token epoch bump) operations",
		}),
	}
}

func (m *Metrics) IncrementSubjectsRegistered() {
	m.SubjectsRegistered.Inc()
}

func (m *Metrics) IncrementLoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTokensIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) IncrementRotation(outcome string) {
	m.TokenRotations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTokenRejection(code string) {
	m.TokenRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementLogoutAll() {
	m.LogoutAll.Inc()
}
