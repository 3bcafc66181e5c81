// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package popularity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/models"
)

// Aggregator is the slice of the aggregation engine the ranker consumes.
type Aggregator interface {
	Aggregate(ctx context.Context, filter aggregation.Filter) ([]models.FeatureUsageAnalytics, error)
}

// Config tunes the ranker.
type Config struct {
	// TrailingWindow is the growth-baseline lookback. Default 7 days.
	TrailingWindow time.Duration

	// CurrentWindow bounds the "current" usage aggregate; zero means
	// all-time.
	CurrentWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.TrailingWindow <= 0 {
		c.TrailingWindow = 7 * 24 * time.Hour
	}
	return c
}

// Ranker orders features by current usage with trailing-window growth.
type Ranker struct {
	cfg        Config
	aggregator Aggregator

	now func() time.Time
}

// New creates a ranker over the given aggregator.
func New(cfg Config, aggregator Aggregator) *Ranker {
	return &Ranker{cfg: cfg.withDefaults(), aggregator: aggregator, now: time.Now}
}

// SetClock replaces the ranker's clock. Test hook.
func (r *Ranker) SetClock(now func() time.Time) {
	r.now = now
}

// PopularFeatures returns up to limit features ordered by current usage
// descending. Growth compares current usage to the trailing window and is
// computed for every returned feature; a zero trailing baseline reports
// growth 0 rather than infinity.
func (r *Ranker) PopularFeatures(ctx context.Context, limit int) ([]models.PopularityEntry, error) {
	if limit < 1 {
		limit = 10
	}

	now := r.now()

	currentFilter := aggregation.Filter{End: &now}
	if r.cfg.CurrentWindow > 0 {
		start := now.Add(-r.cfg.CurrentWindow)
		currentFilter.Start = &start
	}
	current, err := r.aggregator.Aggregate(ctx, currentFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate current window: %w", err)
	}

	trailStart := now.Add(-r.cfg.TrailingWindow)
	trailing, err := r.aggregator.Aggregate(ctx, aggregation.Filter{Start: &trailStart, End: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trailing window: %w", err)
	}

	trailTotals := make(map[string]int, len(trailing))
	for _, entry := range trailing {
		trailTotals[entry.Feature] = entry.TotalUsage
	}

	// The aggregator already sorts by total usage descending; ranking
	// order follows it directly.
	entries := make([]models.PopularityEntry, 0, limit)
	for _, feature := range current {
		if len(entries) == limit {
			break
		}
		entries = append(entries, models.PopularityEntry{
			Feature:       feature.Feature,
			Usage:         feature.TotalUsage,
			GrowthPercent: growth(feature.TotalUsage, trailTotals[feature.Feature]),
		})
	}

	logging.Ctx(ctx).Debug().Int("ranked", len(entries)).Msg("Popularity ranking complete")
	return entries, nil
}

// growth computes percentage growth of current over trailing, 0 when the
// trailing baseline is zero.
func growth(current, trailing int) float64 {
	if trailing == 0 {
		return 0
	}
	return math.Round(float64(current-trailing)/float64(trailing)*100*100) / 100
}
