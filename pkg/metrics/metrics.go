// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	AdSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_requests_submitted_total",
			Help: "Ad requests accepted as pending",
		},
	)

	// AdTransitions is labelled by target status (approved, declined, deactivated).
	AdTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ad_request_transitions_total",
			Help: "Moderation transitions applied to ad requests",
		},
		[]string{"to"},
	)

	// AdConflicts is labelled by the operation that hit the overlap (submit, approve).
	AdConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ad_request_conflicts_total",
			Help: "Requests rejected because they overlap an approved ad",
		},
		[]string{"op"},
	)

	AdsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_requests_purged_total",
			Help: "Ad requests removed by the retention purge",
		},
	)
)
