package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "apartment_"

// Metrics records room lifecycle outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New registers the collectors with reg (prometheus.DefaultRegisterer in the server).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "room_operations_total",
				Help: "Room lifecycle operations by operation and result",
			},
			[]string{"op", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "room_operation_duration_seconds",
				Help:    "Room lifecycle operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.operations, m.latency)
	return m
}

// Observe records one finished operation. result is a short code such as
// "success", "validation_failed" or "store_error".
func (m *Metrics) Observe(op, result string, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
