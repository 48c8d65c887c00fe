package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Ingestion metrics.
	processRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_process_requests_total",
			Help: "Total number of upload processing requests",
		},
		[]string{"transport", "status"}, // transport: http, websocket
	)

	processDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_process_duration_seconds",
			Help:    "Upload processing duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		},
		[]string{"transport"},
	)

	processFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_process_failures_total",
			Help: "Upload processing failures by classified kind",
		},
		[]string{"kind"},
	)

	facesDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_faces_detected",
			Help:    "Number of faces detected per processed upload",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024, 20 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics.
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_websocket_messages_total",
			Help: "Total WebSocket messages by direction",
		},
		[]string{"direction"}, // received, sent
	)
)
