// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package metrics exposes Prometheus instrumentation for the ingest
// pipeline, classifier upstreams, document store and HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingest metrics

	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventus_ingest_events_total",
			Help: "Events processed per source, by outcome",
		},
		[]string{"source", "outcome"}, // "created", "updated", "skipped"
	)

	IngestRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventus_ingest_run_duration_seconds",
			Help:    "Duration of a single-source ingest run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	IngestLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventus_ingest_last_run_timestamp_seconds",
			Help: "Unix time of the last completed ingest run per source",
		},
		[]string{"source"},
	)

	// Classifier metrics

	ClassifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventus_classify_duration_seconds",
			Help:    "Duration of LLM and embedding upstream calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"}, // "llm", "embedding"
	)

	ClassifyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventus_classify_errors_total",
			Help: "Classifier upstream failures by kind",
		},
		[]string{"upstream", "kind"}, // "http", "parse", "breaker"
	)

	ClassifyReused = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventus_classify_reused_total",
			Help: "Events whose stored classification was reused unchanged",
		},
	)

	// Store metrics

	StoreTxnRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventus_store_txn_retries_total",
			Help: "Document store transaction conflicts retried",
		},
		[]string{"collection"},
	)

	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventus_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// Interaction metrics

	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventus_interactions_recorded_total",
			Help: "Interactions recorded by action",
		},
		[]string{"action"},
	)

	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventus_feed_requests_total",
			Help: "Feed requests by personalization outcome",
		},
		[]string{"personalized"},
	)
)

// ObserveHTTPRequest records one HTTP request observation.
func ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}
