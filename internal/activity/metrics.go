package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PendingTimers prometheus.Gauge
	Timeouts      prometheus.Counter
	LogoutErrors  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		PendingTimers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "crm_activity_pending_timers",
			Help: "Identities with a pending inactivity timer",
		}),
		Timeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_activity_timeouts_total",
			Help: "Sessions ended by inactivity",
		}),
		LogoutErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_activity_logout_errors_total",
			Help: "Forced logouts that failed to revoke the session",
		}),
	}
}

func (m *Metrics) setPending(n int) {
	if m != nil {
		m.PendingTimers.Set(float64(n))
	}
}

func (m *Metrics) incTimeouts() {
	if m != nil {
		m.Timeouts.Inc()
	}
}

func (m *Metrics) incLogoutErrors() {
	if m != nil {
		m.LogoutErrors.Inc()
	}
}
