package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit sink.
type Metrics struct {
	Persisted           prometheus.Counter
	BufferDropped       prometheus.Counter
	BreakerDropped      prometheus.Counter
	PersistFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers the audit sink metrics with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Persisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_audit_persisted_total",
			Help: "Total number of audit entries written to the store",
		}),
		BufferDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_audit_buffer_dropped_total",
			Help: "Total number of audit entries dropped because the buffer was full",
		}),
		BreakerDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_audit_circuit_breaker_dropped_total",
			Help: "Total number of audit entries dropped while the circuit breaker was open",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_audit_persist_failures_total",
			Help: "Total number of audit store write failures",
		}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "crm_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) incPersisted() {
	if m != nil {
		m.Persisted.Inc()
	}
}

func (m *Metrics) incBufferDropped() {
	if m != nil {
		m.BufferDropped.Inc()
	}
}

func (m *Metrics) incBreakerDropped() {
	if m != nil {
		m.BreakerDropped.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) setBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
