// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package forecast

import (
	"math"
	"strconv"
	"time"

	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// Config tunes the forecasting module.
type Config struct {
	// RecencyWeight and FrequencyWeight combine the two churn signals.
	// Defaults 0.6 and 0.4.
	RecencyWeight   float64
	FrequencyWeight float64

	// FrequencyWindowDays is the daily-count window for the decline slope.
	// Default 8.
	FrequencyWindowDays int

	// InactivityThresholdDays is the quiet span after which the inactivity
	// risk factor is named. Default 14.
	InactivityThresholdDays int

	// MedianGapFactor scales the median inter-event gap into the span
	// treated as certain churn. Default 3.
	MedianGapFactor float64

	// RecencyFloorDays floors the churn span. Default 7.
	RecencyFloorDays int

	// TrendWindow is the history length the usage forecast fits. Default 12.
	TrendWindow int

	// Horizon is the number of future points forecasts emit. Default 3.
	Horizon int

	// SlopeEpsilon is the relative slope magnitude below which a usage
	// trend reads as stable. Default 0.01.
	SlopeEpsilon float64
}

func (c Config) withDefaults() Config {
	if c.RecencyWeight <= 0 {
		c.RecencyWeight = 0.6
	}
	if c.FrequencyWeight <= 0 {
		c.FrequencyWeight = 0.4
	}
	if c.FrequencyWindowDays < 2 {
		c.FrequencyWindowDays = 8
	}
	if c.InactivityThresholdDays < 1 {
		c.InactivityThresholdDays = 14
	}
	if c.MedianGapFactor <= 0 {
		c.MedianGapFactor = 3
	}
	if c.RecencyFloorDays < 1 {
		c.RecencyFloorDays = 7
	}
	if c.TrendWindow < 2 {
		c.TrendWindow = 12
	}
	if c.Horizon < 1 {
		c.Horizon = 3
	}
	if c.SlopeEpsilon <= 0 {
		c.SlopeEpsilon = 0.01
	}
	return c
}

// confidenceDecay discounts confidence per step of forecast horizon.
const confidenceDecay = 0.9

// Predictor computes churn, usage and revenue forecasts.
type Predictor struct {
	cfg    Config
	source EventSource

	now func() time.Time
}

// New creates a predictor over the given event source.
func New(cfg Config, source EventSource) *Predictor {
	return &Predictor{cfg: cfg.withDefaults(), source: source, now: time.Now}
}

// SetClock replaces the predictor's clock. Test hook.
func (p *Predictor) SetClock(now func() time.Time) {
	p.now = now
}

// ForecastUsage extrapolates a linear trend over the last TrendWindow
// history points. Confidence is the regression's R², decayed per horizon
// step. Fewer than two points yield a single zero-confidence stable point.
func (p *Predictor) ForecastUsage(history []models.SeriesPoint) []models.UsageForecastPoint {
	defer metrics.ForecastsComputed.WithLabelValues("usage").Inc()

	if len(history) < 2 {
		return []models.UsageForecastPoint{{
			Period:         nextLabel(history, 1),
			PredictedUsage: lastValue(history),
			Confidence:     0,
			Trend:          models.TrendStable,
		}}
	}

	if len(history) > p.cfg.TrendWindow {
		history = history[len(history)-p.cfg.TrendWindow:]
	}

	values := make([]float64, len(history))
	for i, point := range history {
		values[i] = point.Value
	}
	fit := fitLine(values)

	mean, _ := meanVariance(values)
	trend := trendDirection(fit.Slope, mean, p.cfg.SlopeEpsilon)

	points := make([]models.UsageForecastPoint, 0, p.cfg.Horizon)
	for h := 1; h <= p.cfg.Horizon; h++ {
		predicted := fit.Intercept + fit.Slope*float64(len(values)-1+h)
		if predicted < 0 {
			predicted = 0
		}
		points = append(points, models.UsageForecastPoint{
			Period:         nextLabel(history, h),
			PredictedUsage: math.Round(predicted*100) / 100,
			Confidence:     round4(clamp01(fit.R2) * math.Pow(confidenceDecay, float64(h-1))),
			Trend:          trend,
		})
	}
	return points
}

// ProjectRevenue extrapolates the trailing mean growth rate. Confidence is
// inversely proportional to the growth-rate variance and decays per step.
// Fewer than two points yield a single zero-confidence flat point.
func (p *Predictor) ProjectRevenue(history []models.SeriesPoint) []models.RevenuePoint {
	defer metrics.ForecastsComputed.WithLabelValues("revenue").Inc()

	if len(history) < 2 {
		return []models.RevenuePoint{{
			Period:           nextLabel(history, 1),
			ProjectedRevenue: lastValue(history),
			GrowthRate:       0,
			Confidence:       0,
		}}
	}

	var growthRates []float64
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Value
		if prev == 0 {
			continue
		}
		growthRates = append(growthRates, (history[i].Value-prev)/prev)
	}
	if len(growthRates) == 0 {
		return []models.RevenuePoint{{
			Period:           nextLabel(history, 1),
			ProjectedRevenue: lastValue(history),
			GrowthRate:       0,
			Confidence:       0,
		}}
	}

	meanGrowth, variance := meanVariance(growthRates)
	base := clamp01(1 / (1 + variance))

	points := make([]models.RevenuePoint, 0, p.cfg.Horizon)
	projected := lastValue(history)
	for h := 1; h <= p.cfg.Horizon; h++ {
		projected *= 1 + meanGrowth
		if projected < 0 {
			projected = 0
		}
		points = append(points, models.RevenuePoint{
			Period:           nextLabel(history, h),
			ProjectedRevenue: math.Round(projected*100) / 100,
			GrowthRate:       math.Round(meanGrowth*10000) / 100,
			Confidence:       round4(base * math.Pow(confidenceDecay, float64(h-1))),
		})
	}
	return points
}

// trendDirection reads the slope sign with a flat band relative to the
// series mean.
func trendDirection(slope, mean, epsilon float64) models.TrendDirection {
	band := epsilon
	if mean > 1 {
		band = epsilon * mean
	}
	switch {
	case slope > band:
		return models.TrendIncreasing
	case slope < -band:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// nextLabel derives the label for the h-th point after the history. Daily
// date labels continue the calendar; anything else falls back to a relative
// "+h" label.
func nextLabel(history []models.SeriesPoint, h int) string {
	if len(history) > 0 {
		if last, err := time.Parse("2006-01-02", history[len(history)-1].Date); err == nil {
			return last.AddDate(0, 0, h).Format("2006-01-02")
		}
	}
	return "+" + strconv.Itoa(h)
}

// lastValue returns the final history value, 0 for empty history.
func lastValue(history []models.SeriesPoint) float64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Value
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
