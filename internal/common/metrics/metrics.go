// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconciler_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_request_errors_total",
			Help: "Total number of requests that ended in a structured error",
		},
		[]string{"error_code", "category"},
	)

	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_evaluations_total",
			Help: "Total number of completed discrepancy evaluations by status",
		},
		[]string{"status"},
	)

	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconciler_upstream_fetch_duration_seconds",
			Help:    "Duration of the upstream tickets fetch in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	TicketsMatched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciler_tickets_matched",
			Help:    "Number of tickets matched per evaluation",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)
)
