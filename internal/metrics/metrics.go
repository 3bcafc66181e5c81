// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event Store Metrics
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_events_recorded_total",
			Help: "Total number of usage events recorded",
		},
		[]string{"feature"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_events_rejected_total",
			Help: "Total number of usage events rejected by validation",
		},
		[]string{"reason"},
	)

	BucketEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_bucket_evictions_total",
			Help: "Total number of entries dropped from full cache buckets",
		},
	)

	DurableLogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulseboard_durable_log_entries",
			Help: "Current number of entries in the durable event log",
		},
	)

	DurableLogPrunes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_durable_log_prunes_total",
			Help: "Total number of entries pruned from the durable event log",
		},
	)

	// Metrics Cache Metrics
	SnapshotsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_metric_snapshots_collected_total",
			Help: "Total number of metric snapshots collected",
		},
	)

	// Aggregation Metrics
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulseboard_aggregation_duration_seconds",
			Help:    "Duration of feature usage aggregation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Report Metrics
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_reports_generated_total",
			Help: "Total number of BI reports generated",
		},
		[]string{"type"},
	)

	ReportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulseboard_report_duration_seconds",
			Help:    "Duration of BI report synthesis in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReportCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_report_cache_hits_total",
			Help: "Total number of report cache hits",
		},
	)

	ReportCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_report_cache_misses_total",
			Help: "Total number of report cache misses",
		},
	)

	// Collaborator Metrics
	CollaboratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_collaborator_calls_total",
			Help: "Total number of external collaborator calls",
		},
		[]string{"collaborator", "outcome"}, // outcome: "ok", "error", "timeout", "open"
	)

	// Forecast Metrics
	ForecastsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_forecasts_computed_total",
			Help: "Total number of forecast computations",
		},
		[]string{"kind"}, // "churn", "usage", "revenue"
	)

	// Dashboard Metrics
	WidgetResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_widget_resolutions_total",
			Help: "Total number of dashboard widget data resolutions",
		},
		[]string{"kind"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulseboard_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveAggregation records one aggregation run.
func ObserveAggregation(start time.Time) {
	AggregationDuration.Observe(time.Since(start).Seconds())
}

// ObserveReport records one report synthesis run.
func ObserveReport(reportType string, start time.Time) {
	ReportsGenerated.WithLabelValues(reportType).Inc()
	ReportDuration.Observe(time.Since(start).Seconds())
}
