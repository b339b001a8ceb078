package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veridoc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "veridoc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Postprocessing metrics
	documentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veridoc_documents_total",
			Help: "Total number of documents postprocessed",
		},
		[]string{"type", "status"}, // type: single, batch
	)

	processingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "veridoc_processing_duration_seconds",
			Help:    "Postprocessing duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"type"},
	)

	countryRuleHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veridoc_country_rule_hits_total",
			Help: "Documents dispatched to a dedicated country rule",
		},
		[]string{"country"},
	)

	batchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "veridoc_batch_size_documents",
			Help:    "Number of documents per batch request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)
