package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
	viewDuration *prometheus.HistogramVec
	records      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer leaves them unregistered, which tests rely on.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rmp_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmp_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmp_view_duration_seconds",
			Help:    "Time spent deriving each dashboard view",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"view"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rmp_dataset_records",
			Help: "Number of professor records in the loaded dataset",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.requests, m.requestTime, m.viewDuration, m.records)
	}
	return m
}

// ObserveView records the time one derivation took.
func (m *Metrics) ObserveView(view string, d time.Duration) {
	m.viewDuration.WithLabelValues(view).Observe(d.Seconds())
}

func (m *Metrics) observeRequest(route, status string, d time.Duration) {
	m.requests.WithLabelValues(route, status).Inc()
	m.requestTime.WithLabelValues(route).Observe(d.Seconds())
}
