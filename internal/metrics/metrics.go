// Package metrics declares the Prometheus metrics exported by rscan.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation metrics
var (
	OperationsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rscan_operations_started_total",
			Help: "Total number of scan operations started",
		},
		[]string{"kind"},
	)

	OperationsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rscan_operations_finished_total",
			Help: "Total number of scan operations finished, by outcome",
		},
		[]string{"kind", "outcome"}, // completed, cancelled, failed
	)

	OperationsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rscan_operations_active",
			Help: "Number of scan operations currently running",
		},
		[]string{"kind"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rscan_operation_duration_seconds",
			Help:    "Scan operation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	CandidatesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rscan_candidates_scanned_total",
			Help: "Total number of filesystem entries examined",
		},
		[]string{"kind"},
	)
)

// Event metrics
var (
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rscan_events_emitted_total",
			Help: "Total number of result events handed to the sink",
		},
		[]string{"kind"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rscan_events_dropped_total",
			Help: "Total number of events dropped because a subscriber was too slow",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
