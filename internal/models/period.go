// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

import "time"

// PeriodData is the structured metrics document returned by the period
// analytics source for a report period. When the source is unreachable the
// engine substitutes ZeroPeriodData so report generation degrades instead
// of failing.
type PeriodData struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`

	// TotalEvents is the volume count for the period.
	TotalEvents int64 `json:"total_events"`

	// TotalVolumeBytes is the processed data volume.
	TotalVolumeBytes int64 `json:"total_volume_bytes"`

	// RiskBuckets counts findings per severity (low/medium/high/critical).
	RiskBuckets map[string]int64 `json:"risk_buckets"`

	// CategoryBreakdown counts events per category (file type, feature
	// family, or whatever taxonomy the source tracks).
	CategoryBreakdown map[string]int64 `json:"category_breakdown"`

	ProcessingTimes ProcessingTimes `json:"processing_times"`

	// ErrorTotal is the error count for the period; ErrorsByType breaks it
	// down per error class.
	ErrorTotal   int64            `json:"error_total"`
	ErrorsByType map[string]int64 `json:"errors_by_type"`

	// DailySeries is the per-interval volume series for the period, oldest
	// first. Trend significance and time-series visualizations derive from
	// it.
	DailySeries []SeriesPoint `json:"daily_series"`
}

// ProcessingTimes are latency percentiles in milliseconds.
type ProcessingTimes struct {
	AverageMs float64 `json:"average_ms"`
	MedianMs  float64 `json:"median_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// SeriesPoint is one labeled point of a time series.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ZeroPeriodData returns the documented zero-valued fallback shape for a
// period. All maps are initialized empty so consumers never nil-check.
func ZeroPeriodData(start, end time.Time, granularity Granularity) PeriodData {
	return PeriodData{
		Start:             start,
		End:               end,
		Granularity:       granularity,
		RiskBuckets:       map[string]int64{},
		CategoryBreakdown: map[string]int64{},
		ErrorsByType:      map[string]int64{},
		DailySeries:       []SeriesPoint{},
	}
}
