// Package http provides the HTTP transport adapter for the gateway.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for sockgate.
// Pass to components that need to record metrics.
type Metrics struct {
	EventsTotal       *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
	RejectionsTotal   *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EventsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sockgate",
				Name:      "events_total",
				Help:      "Total number of gateway events dispatched",
			},
			[]string{"slug", "outcome"}, // outcome=ok/bad_request/method_not_allowed/not_implemented/error
		),
		DispatchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sockgate",
				Name:      "dispatch_duration_seconds",
				Help:      "Event dispatch duration in seconds",
				Buckets:   prometheus.DefBuckets, // 5ms to 10s
			},
			[]string{"slug"},
		),
		RejectionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sockgate",
				Name:      "rejections_total",
				Help:      "Total validation and security rejections",
			},
			[]string{"reason"},
		),
		ActiveConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sockgate",
				Name:      "active_connections",
				Help:      "Connections currently recorded as connected",
			},
		),
	}
}
