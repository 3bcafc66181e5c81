// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

import "time"

// MetricSnapshot is one observed multi-dimensional measurement covering
// performance, business, usage and financial metrics, tagged with the
// dimensions it was observed under. Immutable once recorded; grouped by
// (actor-or-global, calendar day) in the metrics cache.
type MetricSnapshot struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	UserID         string `json:"user_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`

	Performance PerformanceMetrics `json:"performance"`
	Business    BusinessMetrics    `json:"business"`
	Usage       UsageMetrics       `json:"usage"`
	Financial   FinancialMetrics   `json:"financial"`

	Dimensions SnapshotDimensions `json:"dimensions"`
}

// PerformanceMetrics are system-facing measurements.
type PerformanceMetrics struct {
	ResponseTimeMs float64 `json:"response_time_ms"`
	Throughput     float64 `json:"throughput"`
	ErrorRate      float64 `json:"error_rate"`
	Availability   float64 `json:"availability"`
}

// BusinessMetrics are customer-facing measurements.
type BusinessMetrics struct {
	ConversionRate       float64 `json:"conversion_rate"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	RetentionRate        float64 `json:"retention_rate"`
	ChurnRate            float64 `json:"churn_rate"`
}

// UsageMetrics describe product activity.
type UsageMetrics struct {
	ActiveUsers        int                `json:"active_users"`
	SessionDurationSec float64            `json:"session_duration_sec"`
	FeatureAdoption    map[string]float64 `json:"feature_adoption,omitempty"`
	APIUsage           map[string]int64   `json:"api_usage,omitempty"`
}

// FinancialMetrics describe revenue and cost figures.
type FinancialMetrics struct {
	Revenue                 float64 `json:"revenue"`
	CostPerUser             float64 `json:"cost_per_user"`
	LifetimeValue           float64 `json:"lifetime_value"`
	MonthlyRecurringRevenue float64 `json:"monthly_recurring_revenue"`
}

// SnapshotDimensions tag a snapshot with the context it was observed under.
type SnapshotDimensions struct {
	UserTier   string `json:"user_tier,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Region     string `json:"region,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Source     string `json:"source,omitempty"`
}

// DimensionCount returns how many dimension tags carry a value. The metrics
// cache reports this count to the analytics sink on collect.
func (s MetricSnapshot) DimensionCount() int {
	n := 0
	for _, v := range []string{
		s.Dimensions.UserTier,
		s.Dimensions.Industry,
		s.Dimensions.Region,
		s.Dimensions.DeviceType,
		s.Dimensions.Source,
	} {
		if v != "" {
			n++
		}
	}
	return n
}
