package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for permission evaluation.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	AdminBypass     prometheus.Counter
	EvaluationError prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_authz_decisions_total",
			Help: "Permission decisions by outcome",
		}, []string{"outcome"}),
		AdminBypass: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_authz_admin_bypass_total",
			Help: "Permission checks granted through an admin role alias",
		}),
		EvaluationError: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_authz_evaluation_errors_total",
			Help: "Permission checks denied because the store failed",
		}),
	}
}

func (m *Metrics) IncGranted() {
	if m != nil {
		m.Decisions.WithLabelValues("granted").Inc()
	}
}

func (m *Metrics) IncDenied() {
	if m != nil {
		m.Decisions.WithLabelValues("denied").Inc()
	}
}

func (m *Metrics) IncAdminBypass() {
	if m != nil {
		m.AdminBypass.Inc()
	}
}

func (m *Metrics) IncEvaluationError() {
	if m != nil {
		m.EvaluationError.Inc()
	}
}
