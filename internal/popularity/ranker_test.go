// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package popularity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/models"
)

// windowAggregator answers the all-time and trailing-window calls with
// pre-built aggregates, keyed on whether the filter has a start bound.
type windowAggregator struct {
	allTime  []models.FeatureUsageAnalytics
	trailing []models.FeatureUsageAnalytics
	err      error
}

func (w windowAggregator) Aggregate(_ context.Context, filter aggregation.Filter) ([]models.FeatureUsageAnalytics, error) {
	if w.err != nil {
		return nil, w.err
	}
	if filter.Start != nil {
		return w.trailing, nil
	}
	return w.allTime, nil
}

func feature(name string, total int) models.FeatureUsageAnalytics {
	return models.FeatureUsageAnalytics{Feature: name, TotalUsage: total}
}

func TestPopularFeatures_RankAndGrowth(t *testing.T) {
	agg := windowAggregator{
		allTime: []models.FeatureUsageAnalytics{
			feature("a", 50),
			feature("b", 30),
		},
		trailing: []models.FeatureUsageAnalytics{
			feature("a", 40),
		},
	}
	r := New(Config{}, agg)

	entries, err := r.PopularFeatures(context.Background(), 10)
	if err != nil {
		t.Fatalf("PopularFeatures failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Feature != "a" || entries[0].Usage != 50 {
		t.Errorf("Expected a:50 first, got %+v", entries[0])
	}
	if entries[0].GrowthPercent != 25 {
		t.Errorf("Expected growth 25 for a, got %v", entries[0].GrowthPercent)
	}
	// b has no trailing-window usage, so its growth baseline is zero.
	if entries[1].Feature != "b" || entries[1].GrowthPercent != 0 {
		t.Errorf("Expected b with growth 0, got %+v", entries[1])
	}
}

func TestPopularFeatures_LimitTruncatesAfterRanking(t *testing.T) {
	agg := windowAggregator{
		allTime: []models.FeatureUsageAnalytics{
			feature("a", 50),
			feature("b", 30),
		},
		trailing: []models.FeatureUsageAnalytics{
			feature("a", 40),
			feature("b", 30),
		},
	}
	r := New(Config{}, agg)

	entries, err := r.PopularFeatures(context.Background(), 1)
	if err != nil {
		t.Fatalf("PopularFeatures failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	// Growth is computed before truncation, so the survivor still carries
	// its trailing comparison.
	if entries[0].Feature != "a" || entries[0].GrowthPercent != 25 {
		t.Errorf("Expected a with growth 25, got %+v", entries[0])
	}
}

func TestPopularFeatures_GrowthRounding(t *testing.T) {
	agg := windowAggregator{
		allTime:  []models.FeatureUsageAnalytics{feature("a", 10)},
		trailing: []models.FeatureUsageAnalytics{feature("a", 3)},
	}
	r := New(Config{}, agg)

	entries, err := r.PopularFeatures(context.Background(), 5)
	if err != nil {
		t.Fatalf("PopularFeatures failed: %v", err)
	}
	// (10-3)/3*100 = 233.333... → 233.33
	if entries[0].GrowthPercent != 233.33 {
		t.Errorf("Expected growth 233.33, got %v", entries[0].GrowthPercent)
	}
}

func TestPopularFeatures_DefaultLimit(t *testing.T) {
	all := make([]models.FeatureUsageAnalytics, 15)
	for i := range all {
		all[i] = feature(string(rune('a'+i)), 100-i)
	}
	r := New(Config{}, windowAggregator{allTime: all})

	entries, err := r.PopularFeatures(context.Background(), 0)
	if err != nil {
		t.Fatalf("PopularFeatures failed: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("Expected default limit 10, got %d", len(entries))
	}
}

func TestPopularFeatures_AggregatorError(t *testing.T) {
	r := New(Config{}, windowAggregator{err: errors.New("store offline")})

	if _, err := r.PopularFeatures(context.Background(), 5); err == nil {
		t.Error("Expected error when aggregation fails")
	}
}

func TestPopularFeatures_InjectedClock(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	var gotStart, gotEnd *time.Time
	probe := aggregatorFunc(func(_ context.Context, filter aggregation.Filter) ([]models.FeatureUsageAnalytics, error) {
		if filter.Start != nil {
			gotStart, gotEnd = filter.Start, filter.End
		}
		return nil, nil
	})

	r := New(Config{}, probe)
	r.SetClock(func() time.Time { return fixed })

	if _, err := r.PopularFeatures(context.Background(), 5); err != nil {
		t.Fatalf("PopularFeatures failed: %v", err)
	}
	if gotStart == nil || gotEnd == nil {
		t.Fatal("Expected trailing-window bounds to be set")
	}
	if !gotEnd.Equal(fixed) {
		t.Errorf("Expected trailing window to end at the injected clock, got %v", gotEnd)
	}
	if want := fixed.Add(-7 * 24 * time.Hour); !gotStart.Equal(want) {
		t.Errorf("Expected trailing window start %v, got %v", want, gotStart)
	}
}

type aggregatorFunc func(context.Context, aggregation.Filter) ([]models.FeatureUsageAnalytics, error)

func (f aggregatorFunc) Aggregate(ctx context.Context, filter aggregation.Filter) ([]models.FeatureUsageAnalytics, error) {
	return f(ctx, filter)
}
