// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pulseboard/internal/cache"
	"github.com/tomtom215/pulseboard/internal/collab"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// metricSets maps each report type to the static metric set it covers.
// Not user-configurable per call.
var metricSets = map[models.ReportType][]string{
	models.ReportExecutive:   {"revenue", "users", "growth", "satisfaction"},
	models.ReportOperational: {"performance", "usage", "errors", "capacity"},
	models.ReportFinancial:   {"revenue", "costs", "profitability", "forecasts"},
	models.ReportTechnical:   {"performance", "errors", "capacity", "security"},
}

// reportTitles names each report type in generated titles.
var reportTitles = map[models.ReportType]string{
	models.ReportExecutive:   "Executive Summary",
	models.ReportOperational: "Operational Report",
	models.ReportFinancial:   "Financial Analysis",
	models.ReportTechnical:   "Technical Report",
}

// reportNamespace seeds the deterministic report IDs. Generating the same
// report type over the same period and filters yields the same ID.
var reportNamespace = uuid.MustParse("8f3c1d2a-5b7e-4a90-9c41-d6f082e53a17")

// Config tunes the synthesizer.
type Config struct {
	// CacheTTL bounds how long generated reports stay retrievable by ID.
	// Default 1h.
	CacheTTL time.Duration

	// ErrorRateThreshold is the error/event ratio above which an error
	// insight is raised. Default 0.05.
	ErrorRateThreshold float64

	// LatencyThresholdMs is the p95 processing time above which a latency
	// insight is raised. Default 1000.
	LatencyThresholdMs float64
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.ErrorRateThreshold <= 0 {
		c.ErrorRateThreshold = 0.05
	}
	if c.LatencyThresholdMs <= 0 {
		c.LatencyThresholdMs = 1000
	}
	return c
}

// Synthesizer generates and caches business-intelligence reports.
type Synthesizer struct {
	cfg     Config
	periods collab.PeriodSource
	cache   *cache.Cache

	now func() time.Time
}

// New creates a synthesizer over the given period source. The source is
// expected to come pre-wrapped with timeout and breaker protection.
func New(cfg Config, periods collab.PeriodSource) *Synthesizer {
	cfg = cfg.withDefaults()
	return &Synthesizer{
		cfg:     cfg,
		periods: periods,
		cache:   cache.New(cfg.CacheTTL),
		now:     time.Now,
	}
}

// SetClock replaces the synthesizer's clock. Test hook.
func (s *Synthesizer) SetClock(now func() time.Time) {
	s.now = now
}

// Generate synthesizes one report. The pipeline runs metric-set resolution,
// period fetch, insight derivation, recommendation derivation, trend
// classification, visualization building and assembly in order, checking
// ctx between stages. A period-source failure degrades to zero-valued
// period data; only validation and cancellation produce errors.
func (s *Synthesizer) Generate(ctx context.Context, reportType models.ReportType,
	period models.ReportPeriod, filters map[string]string) (models.BusinessIntelligenceReport, error) {

	started := time.Now()

	if !reportType.Valid() {
		return models.BusinessIntelligenceReport{},
			engine.NewValidationError("type", fmt.Sprintf("unknown report type %q", reportType))
	}
	if period.End.Before(period.Start) {
		return models.BusinessIntelligenceReport{},
			engine.NewValidationError("period", "end precedes start")
	}

	metricSet := metricSets[reportType]

	if err := ctx.Err(); err != nil {
		return models.BusinessIntelligenceReport{}, err
	}
	data := s.fetchPeriod(ctx, period, metricSet)

	if err := ctx.Err(); err != nil {
		return models.BusinessIntelligenceReport{}, err
	}
	insights := s.deriveInsights(data)

	if err := ctx.Err(); err != nil {
		return models.BusinessIntelligenceReport{}, err
	}
	recommendations := deriveRecommendations(insights)

	if err := ctx.Err(); err != nil {
		return models.BusinessIntelligenceReport{}, err
	}
	trends := deriveTrends(data)

	if err := ctx.Err(); err != nil {
		return models.BusinessIntelligenceReport{}, err
	}
	visualizations := buildVisualizations(data)

	report := models.BusinessIntelligenceReport{
		ID:     reportID(reportType, period, filters),
		Title:  title(reportType, period),
		Type:   reportType,
		Period: period,
		Data: models.ReportData{
			Summary:         summarize(data, metricSet),
			Trends:          trends,
			Insights:        insights,
			Recommendations: recommendations,
		},
		Visualizations: visualizations,
		CreatedAt:      s.now().UTC(),
		GeneratedBy:    "pulseboard-engine",
	}

	s.cache.Set(report.ID, report)
	metrics.ObserveReport(string(reportType), started)

	logging.Ctx(ctx).Info().
		Str("report_id", report.ID).
		Str("type", string(reportType)).
		Int("insights", len(insights)).
		Msg("Report generated")
	return report, nil
}

// Report retrieves a previously generated report by ID.
func (s *Synthesizer) Report(id string) (models.BusinessIntelligenceReport, error) {
	value, ok := s.cache.Get(id)
	if !ok {
		metrics.ReportCacheMisses.Inc()
		return models.BusinessIntelligenceReport{}, engine.ErrReportNotFound
	}
	metrics.ReportCacheHits.Inc()
	return value.(models.BusinessIntelligenceReport), nil
}

// fetchPeriod loads period data, degrading to the zero-valued shape when
// the source is unavailable.
func (s *Synthesizer) fetchPeriod(ctx context.Context, period models.ReportPeriod, metricSet []string) models.PeriodData {
	granularity := period.Granularity.Normalize()
	data, err := s.periods.PeriodData(ctx, period.Start, period.End, granularity, metricSet)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Period source unavailable, using zero period data")
		return models.ZeroPeriodData(period.Start, period.End, granularity)
	}
	return data
}

// summarize builds the report's headline figures.
func summarize(data models.PeriodData, metricSet []string) map[string]interface{} {
	return map[string]interface{}{
		"metric_set":         metricSet,
		"total_events":       data.TotalEvents,
		"total_volume_bytes": data.TotalVolumeBytes,
		"error_total":        data.ErrorTotal,
		"avg_processing_ms":  data.ProcessingTimes.AverageMs,
		"p95_processing_ms":  data.ProcessingTimes.P95Ms,
	}
}

// deriveInsights applies the rule set over period data. Rules fire in a
// fixed order so regeneration is deterministic.
func (s *Synthesizer) deriveInsights(data models.PeriodData) []models.Insight {
	var insights []models.Insight

	if change, ok := seriesChange(data.DailySeries); ok {
		switch {
		case change > 20:
			insights = append(insights, models.Insight{
				Type:    "volume_growth",
				Message: fmt.Sprintf("Event volume grew %.2f%% over the period", change),
				Impact:  models.ImpactPositive,
			})
		case change < -20:
			insights = append(insights, models.Insight{
				Type:    "volume_decline",
				Message: fmt.Sprintf("Event volume fell %.2f%% over the period", -change),
				Impact:  models.ImpactNegative,
			})
		default:
			insights = append(insights, models.Insight{
				Type:    "volume_stable",
				Message: fmt.Sprintf("Event volume changed %.2f%% over the period", change),
				Impact:  models.ImpactNeutral,
			})
		}
	}

	if data.TotalEvents > 0 {
		errorRate := float64(data.ErrorTotal) / float64(data.TotalEvents)
		if errorRate > s.cfg.ErrorRateThreshold {
			insights = append(insights, models.Insight{
				Type:    "elevated_errors",
				Message: fmt.Sprintf("Error rate %.2f%% exceeds the %.2f%% threshold", errorRate*100, s.cfg.ErrorRateThreshold*100),
				Impact:  models.ImpactNegative,
			})
		}
	}

	if data.ProcessingTimes.P95Ms > s.cfg.LatencyThresholdMs {
		insights = append(insights, models.Insight{
			Type:    "slow_processing",
			Message: fmt.Sprintf("p95 processing time %.0fms exceeds the %.0fms threshold", data.ProcessingTimes.P95Ms, s.cfg.LatencyThresholdMs),
			Impact:  models.ImpactNegative,
		})
	}

	if critical := data.RiskBuckets["critical"]; critical > 0 {
		insights = append(insights, models.Insight{
			Type:    "critical_findings",
			Message: fmt.Sprintf("%d critical findings recorded in the period", critical),
			Impact:  models.ImpactNegative,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, models.Insight{
			Type:    "no_signal",
			Message: "No significant movement detected in the period",
			Impact:  models.ImpactNeutral,
		})
	}
	return insights
}

// recommendationRules maps insight types to their follow-up actions.
// Negative insights always produce high-priority recommendations.
var recommendationRules = map[string]models.Recommendation{
	"volume_decline": {
		Priority:       models.PriorityHigh,
		Action:         "Investigate the drop in event volume and re-engage affected user segments",
		ExpectedImpact: "Recover lost engagement before it compounds into churn",
	},
	"elevated_errors": {
		Priority:       models.PriorityHigh,
		Action:         "Triage the dominant error classes and ship fixes for the top offenders",
		ExpectedImpact: "Reduce the error rate below the alerting threshold",
	},
	"slow_processing": {
		Priority:       models.PriorityHigh,
		Action:         "Profile the processing pipeline and address the p95 latency regression",
		ExpectedImpact: "Restore p95 processing time to within target",
	},
	"critical_findings": {
		Priority:       models.PriorityHigh,
		Action:         "Remediate critical findings before the next reporting period",
		ExpectedImpact: "Eliminate the highest-severity open risk",
	},
	"volume_growth": {
		Priority:       models.PriorityLow,
		Action:         "Verify capacity headroom for the increased event volume",
		ExpectedImpact: "Sustain growth without degrading processing latency",
	},
}

// deriveRecommendations maps insights onto prioritized actions. Every
// negative insight yields a recommendation; neutral-only insight sets fall
// back to a medium-priority instrumentation action.
func deriveRecommendations(insights []models.Insight) []models.Recommendation {
	var recommendations []models.Recommendation
	for _, insight := range insights {
		if rec, ok := recommendationRules[insight.Type]; ok {
			recommendations = append(recommendations, rec)
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, models.Recommendation{
			Priority:       models.PriorityMedium,
			Action:         "Expand metric coverage to surface period-over-period movement",
			ExpectedImpact: "Future reports carry actionable signal",
		})
	}
	return recommendations
}

// deriveTrends classifies the period-over-period volume delta from the
// daily series. |Δ| > 20% is high significance, 5-20% medium, below 5% low.
func deriveTrends(data models.PeriodData) []models.Trend {
	change, ok := seriesChange(data.DailySeries)
	if !ok {
		return nil
	}
	return []models.Trend{{
		Metric:        "event_volume",
		ChangePercent: change,
		Significance:  classify(change),
	}}
}

// classify maps a delta magnitude onto its significance tier.
func classify(changePercent float64) models.Significance {
	abs := math.Abs(changePercent)
	switch {
	case abs > 20:
		return models.SignificanceHigh
	case abs >= 5:
		return models.SignificanceMedium
	default:
		return models.SignificanceLow
	}
}

// seriesChange compares the second half of the series against the first,
// as a rounded percentage. Returns false when the series is too short or
// the baseline is zero.
func seriesChange(series []models.SeriesPoint) (float64, bool) {
	if len(series) < 2 {
		return 0, false
	}

	mid := len(series) / 2
	var first, second float64
	for _, point := range series[:mid] {
		first += point.Value
	}
	for _, point := range series[mid:] {
		second += point.Value
	}
	if first == 0 {
		return 0, false
	}
	return math.Round((second-first)/first*100*100) / 100, true
}

// buildVisualizations emits one time-series spec for the volume series and
// one categorical-distribution spec per populated breakdown dimension.
// Specs carry data and render hints only.
func buildVisualizations(data models.PeriodData) []models.VisualizationSpec {
	var specs []models.VisualizationSpec

	if len(data.DailySeries) > 0 {
		points := make([]map[string]interface{}, 0, len(data.DailySeries))
		for _, point := range data.DailySeries {
			points = append(points, map[string]interface{}{"date": point.Date, "value": point.Value})
		}
		specs = append(specs, models.VisualizationSpec{
			Type:   models.ChartLine,
			Title:  "Event Volume Over Time",
			Data:   points,
			Config: map[string]string{"x": "date", "y": "value"},
		})
	}

	if spec, ok := distributionSpec("Category Distribution", models.ChartPie, data.CategoryBreakdown); ok {
		specs = append(specs, spec)
	}
	if spec, ok := distributionSpec("Risk Severity Distribution", models.ChartBar, data.RiskBuckets); ok {
		specs = append(specs, spec)
	}
	if spec, ok := distributionSpec("Errors by Type", models.ChartBar, data.ErrorsByType); ok {
		specs = append(specs, spec)
	}
	return specs
}

// distributionSpec builds a categorical chart from a breakdown map with
// stable label ordering.
func distributionSpec(chartTitle string, chartType models.ChartType, breakdown map[string]int64) (models.VisualizationSpec, bool) {
	if len(breakdown) == 0 {
		return models.VisualizationSpec{}, false
	}

	labels := make([]string, 0, len(breakdown))
	for label := range breakdown {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]map[string]interface{}, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, map[string]interface{}{"label": label, "count": breakdown[label]})
	}
	return models.VisualizationSpec{
		Type:   chartType,
		Title:  chartTitle,
		Data:   rows,
		Config: map[string]string{"label": "label", "value": "count"},
	}, true
}

// reportID derives the deterministic content-addressed ID for a report
// request. Filters participate in sorted key order.
func reportID(reportType models.ReportType, period models.ReportPeriod, filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(reportType))
	b.WriteByte('|')
	b.WriteString(period.Start.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(period.End.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(string(period.Granularity))
	for _, key := range keys {
		b.WriteByte('|')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(filters[key])
	}
	return uuid.NewSHA1(reportNamespace, []byte(b.String())).String()
}

// title renders the human-readable report heading with its period range.
func title(reportType models.ReportType, period models.ReportPeriod) string {
	return fmt.Sprintf("%s (%s to %s)",
		reportTitles[reportType],
		period.Start.UTC().Format("2006-01-02"),
		period.End.UTC().Format("2006-01-02"))
}
