// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

import "time"

// ReportType selects the metric set a business-intelligence report covers.
type ReportType string

// Report types.
const (
	ReportExecutive   ReportType = "executive"
	ReportOperational ReportType = "operational"
	ReportFinancial   ReportType = "financial"
	ReportTechnical   ReportType = "technical"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportExecutive, ReportOperational, ReportFinancial, ReportTechnical:
		return true
	}
	return false
}

// Granularity is the time resolution of a report period.
type Granularity string

// Report period granularities. Quarter and year are accepted as input and
// collapse to month when fetching period data.
const (
	GranularityHour    Granularity = "hour"
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Normalize maps coarse granularities onto the resolutions the period
// analytics source supports. Unknown values fall back to day.
func (g Granularity) Normalize() Granularity {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return g
	case GranularityQuarter, GranularityYear:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// ReportPeriod bounds a report in time.
type ReportPeriod struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

// Significance classifies the magnitude of a period-over-period delta.
type Significance string

// Trend significance tiers: >20% high, 5-20% medium, <5% low.
const (
	SignificanceHigh   Significance = "high"
	SignificanceMedium Significance = "medium"
	SignificanceLow    Significance = "low"
)

// Impact is the polarity of an insight.
type Impact string

// Insight polarities.
const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Priority ranks a recommendation.
type Priority string

// Recommendation priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Trend is one ranked entry of a report's trend list.
type Trend struct {
	Metric        string       `json:"metric"`
	ChangePercent float64      `json:"change_percent"`
	Significance  Significance `json:"significance"`
}

// Insight is a rule-derived statement about the period with a polarity tag.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Impact  Impact `json:"impact"`
}

// Recommendation is a priority-tagged action with its expected impact.
type Recommendation struct {
	Priority       Priority `json:"priority"`
	Action         string   `json:"action"`
	ExpectedImpact string   `json:"expected_impact"`
}

// ChartType selects the visualization kind of a spec.
type ChartType string

// Visualization chart kinds.
const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartHeatmap ChartType = "heatmap"
	ChartFunnel  ChartType = "funnel"
)

// VisualizationSpec carries chart data and render hints only; rendering is
// the presentation layer's concern.
type VisualizationSpec struct {
	Type   ChartType                `json:"type"`
	Title  string                   `json:"title"`
	Data   []map[string]interface{} `json:"data"`
	Config map[string]string        `json:"config"`
}

// ReportData is the analytical body of a report.
type ReportData struct {
	Summary         map[string]interface{} `json:"summary"`
	Trends          []Trend                `json:"trends"`
	Insights        []Insight              `json:"insights"`
	Recommendations []Recommendation       `json:"recommendations"`
}

// BusinessIntelligenceReport is a synthesized document of summary, trend,
// insight, recommendation and visualization data for a period. Reports are
// immutable once returned; regenerating with identical inputs over an
// unchanged event set yields a structurally identical report.
type BusinessIntelligenceReport struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Type        ReportType          `json:"type"`
	Period      ReportPeriod        `json:"period"`
	Data        ReportData          `json:"data"`
	Visualizations []VisualizationSpec `json:"visualizations"`
	CreatedAt   time.Time           `json:"created_at"`
	GeneratedBy string              `json:"generated_by"`
}
