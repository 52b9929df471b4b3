package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for keyword routing.
type Metrics struct {
	Lookups     *prometheus.CounterVec
	RuleChanges *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_routing_lookups_total",
			Help: "Messages routed by keyword, by outcome",
		}, []string{"outcome"}),
		RuleChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_routing_rule_changes_total",
			Help: "Keyword rule mutations by operation",
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncLookup(matched bool) {
	if m == nil {
		return
	}
	outcome := "unmatched"
	if matched {
		outcome = "matched"
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRuleChange(operation string) {
	if m != nil {
		m.RuleChanges.WithLabelValues(operation).Inc()
	}
}
