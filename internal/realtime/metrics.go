package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Clients   prometheus.Gauge
	Delivered prometheus.Counter
	Dropped   prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Clients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "crm_realtime_ws_clients",
			Help: "Connected websocket clients",
		}),
		Delivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_realtime_ws_messages_total",
			Help: "Events queued to websocket clients",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_realtime_ws_slow_clients_total",
			Help: "Websocket clients disconnected because their send buffer was full",
		}),
	}
}

func (m *Metrics) setClients(n int) {
	if m != nil {
		m.Clients.Set(float64(n))
	}
}

func (m *Metrics) incDelivered() {
	if m != nil {
		m.Delivered.Inc()
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}
