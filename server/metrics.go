package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the collectors exposed on /metrics.
type metrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	refErrors     *prometheus.GaugeVec
	discrepancies prometheus.Gauge
}

func newMetrics(namespace string) *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests per route and status code",
			},
			[]string{"route", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests per route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		refErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "remaining_cash_issues",
				Help:      "Remaining cash divergences found by the last scan",
			},
			[]string{"fixable"},
		),
		discrepancies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "balance_discrepancies",
				Help:      "Accounts whose stored balance disagrees with their history at the last check",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.latency.Describe(ch)
	m.refErrors.Describe(ch)
	m.discrepancies.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.latency.Collect(ch)
	m.refErrors.Collect(ch)
	m.discrepancies.Collect(ch)
}
