package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for conversation assignment.
type Metrics struct {
	Assignments       *prometheus.CounterVec
	Selections        *prometheus.CounterVec
	AssignmentLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		Assignments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_assignments_total",
			Help: "Assignment requests by kind and outcome (assigned, suppressed, failed)",
		}, []string{"kind", "outcome"}),
		Selections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_assignment_selections_total",
			Help: "Team member selections by method and outcome",
		}, []string{"method", "outcome"}),
		AssignmentLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_assignment_duration_seconds",
			Help:    "Time spent assigning a conversation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncAssignment(kind, outcome string) {
	if m != nil {
		m.Assignments.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncSelection(method string, ok bool) {
	if m == nil {
		return
	}
	outcome := "selected"
	if !ok {
		outcome = "none"
	}
	m.Selections.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) ObserveAssignment(kind string, start time.Time) {
	if m != nil {
		m.AssignmentLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
