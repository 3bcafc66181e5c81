// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

// TrendDirection labels the slope of a usage forecast.
type TrendDirection string

// Forecast trend directions.
const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ChurnPrediction scores one actor's churn risk.
type ChurnPrediction struct {
	UserID string `json:"user_id"`

	// Probability is a risk score in [0,1].
	Probability float64 `json:"probability"`

	// RiskFactors name the inputs that exceeded their thresholds, e.g.
	// "no activity in >14 days".
	RiskFactors []string `json:"risk_factors"`

	RecommendedActions []string `json:"recommended_actions"`
}

// UsageForecastPoint is one predicted period of usage volume.
type UsageForecastPoint struct {
	Period         string         `json:"period"`
	PredictedUsage float64        `json:"predicted_usage"`
	Confidence     float64        `json:"confidence"`
	Trend          TrendDirection `json:"trend"`
}

// RevenuePoint is one projected period of revenue.
type RevenuePoint struct {
	Period           string  `json:"period"`
	ProjectedRevenue float64 `json:"projected_revenue"`
	GrowthRate       float64 `json:"growth_rate"`
	Confidence       float64 `json:"confidence"`
}

// ForecastResult bundles the three forecast products.
type ForecastResult struct {
	ChurnPredictions  []ChurnPrediction    `json:"churn_predictions"`
	UsageForecast     []UsageForecastPoint `json:"usage_forecast"`
	RevenueProjection []RevenuePoint       `json:"revenue_projection"`
}
