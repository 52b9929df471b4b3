package dedup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"crm/internal/assignment/models"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
	Errors    prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_assignment_dedup_decisions_total",
			Help: "Duplicate guard decisions by source and outcome",
		}, []string{"source", "outcome"}),
		Errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_assignment_dedup_errors_total",
			Help: "Duplicate guard store failures (assignment allowed)",
		}),
	}
}

func (m *Metrics) incBlocked(source models.Source) {
	if m != nil {
		m.Decisions.WithLabelValues(string(source), "blocked").Inc()
	}
}

func (m *Metrics) incAllowed(source models.Source) {
	if m != nil {
		m.Decisions.WithLabelValues(string(source), "allowed").Inc()
	}
}

func (m *Metrics) incErrors() {
	if m != nil {
		m.Errors.Inc()
	}
}
