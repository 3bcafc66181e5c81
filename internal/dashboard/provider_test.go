// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/models"
)

var dashboardNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

// sliceSource serves a fixed event slice with store-equivalent filtering.
type sliceSource struct {
	events []models.UsageEvent
}

func (s sliceSource) Query(_ context.Context, filter eventstore.QueryFilter) ([]models.UsageEvent, error) {
	matched := make([]models.UsageEvent, 0, len(s.events))
	for _, event := range s.events {
		if filter.Feature != "" && event.Feature != filter.Feature {
			continue
		}
		if filter.Start != nil && event.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && event.Timestamp.After(*filter.End) {
			continue
		}
		matched = append(matched, event)
	}
	return matched, nil
}

type fixedAggregator struct {
	aggregates []models.FeatureUsageAnalytics
}

func (f fixedAggregator) Aggregate(context.Context, aggregation.Filter) ([]models.FeatureUsageAnalytics, error) {
	return f.aggregates, nil
}

type fixedRate int64

func (r fixedRate) IngestRate() int64 { return int64(r) }

func newTestProvider(events []models.UsageEvent, aggregates []models.FeatureUsageAnalytics, rate int64) *Provider {
	p := New(Config{}, sliceSource{events: events}, fixedAggregator{aggregates: aggregates}, fixedRate(rate))
	p.SetClock(func() time.Time { return dashboardNow })
	return p
}

func widget(kind models.WidgetType) models.DashboardWidget {
	return models.DashboardWidget{
		ID:                 "w1",
		Type:               kind,
		Title:              "Test",
		Position:           models.WidgetPosition{Width: 2, Height: 2},
		DataSource:         "upload",
		RefreshIntervalSec: 30,
	}
}

func uploadEvent(ts time.Time) models.UsageEvent {
	return models.UsageEvent{
		ID:        "evt",
		Timestamp: ts,
		UserID:    "u1",
		SessionID: "sess",
		Feature:   "upload",
		Action:    "start",
	}
}

func TestResolveWidget_InvalidWidget(t *testing.T) {
	p := newTestProvider(nil, nil, 0)

	bad := widget(models.WidgetMetric)
	bad.DataSource = ""
	if _, err := p.ResolveWidget(context.Background(), bad); !engine.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestResolveWidget_MetricDelta(t *testing.T) {
	var events []models.UsageEvent
	// 4 events in the current 7-day window, 2 in the previous one.
	for i := 0; i < 4; i++ {
		events = append(events, uploadEvent(dashboardNow.AddDate(0, 0, -1)))
	}
	for i := 0; i < 2; i++ {
		events = append(events, uploadEvent(dashboardNow.AddDate(0, 0, -10)))
	}
	p := newTestProvider(events, nil, 0)

	data, err := p.ResolveWidget(context.Background(), widget(models.WidgetMetric))
	if err != nil {
		t.Fatalf("ResolveWidget failed: %v", err)
	}
	if data.Kind != models.WidgetMetric {
		t.Errorf("Expected metric kind, got %s", data.Kind)
	}
	if data.Value != 4 {
		t.Errorf("Expected current value 4, got %v", data.Value)
	}
	if data.DeltaPercent != 100 {
		t.Errorf("Expected delta 100%% (4 vs 2), got %v", data.DeltaPercent)
	}
}

func TestResolveWidget_MetricDeltaZeroBaseline(t *testing.T) {
	events := []models.UsageEvent{uploadEvent(dashboardNow.AddDate(0, 0, -1))}
	p := newTestProvider(events, nil, 0)

	data, err := p.ResolveWidget(context.Background(), widget(models.WidgetKPI))
	if err != nil {
		t.Fatalf("ResolveWidget failed: %v", err)
	}
	if data.DeltaPercent != 0 {
		t.Errorf("Expected delta 0 on empty previous window, got %v", data.DeltaPercent)
	}
}

func TestResolveWidget_ChartSeries(t *testing.T) {
	events := []models.UsageEvent{
		uploadEvent(dashboardNow),                   // today
		uploadEvent(dashboardNow),                   // today
		uploadEvent(dashboardNow.AddDate(0, 0, -3)), // three days ago
	}
	p := newTestProvider(events, nil, 0)

	data, err := p.ResolveWidget(context.Background(), widget(models.WidgetChart))
	if err != nil {
		t.Fatalf("ResolveWidget failed: %v", err)
	}
	if len(data.Series) != 10 {
		t.Fatalf("Expected fixed 10-point series, got %d", len(data.Series))
	}

	last := data.Series[9]
	if last.Date != "2026-03-20" || last.Value != 2 {
		t.Errorf("Expected 2 events on 2026-03-20, got %+v", last)
	}
	if got := data.Series[6]; got.Date != "2026-03-17" || got.Value != 1 {
		t.Errorf("Expected 1 event on 2026-03-17, got %+v", got)
	}
	// Quiet days are zero-filled, not omitted.
	if got := data.Series[0]; got.Date != "2026-03-11" || got.Value != 0 {
		t.Errorf("Expected zero-filled 2026-03-11, got %+v", got)
	}
}

func TestResolveWidget_TableRows(t *testing.T) {
	aggregates := []models.FeatureUsageAnalytics{
		{Feature: "upload", TotalUsage: 50, UniqueUsers: 10},
		{Feature: "export", TotalUsage: 30, UniqueUsers: 8},
		{Feature: "share", TotalUsage: 20, UniqueUsers: 5},
		{Feature: "search", TotalUsage: 10, UniqueUsers: 4},
		{Feature: "tag", TotalUsage: 5, UniqueUsers: 2},
		{Feature: "archive", TotalUsage: 1, UniqueUsers: 1},
	}
	p := newTestProvider(nil, aggregates, 0)

	data, err := p.ResolveWidget(context.Background(), widget(models.WidgetTable))
	if err != nil {
		t.Fatalf("ResolveWidget failed: %v", err)
	}
	if len(data.Rows) != 5 {
		t.Fatalf("Expected table limited to 5 rows, got %d", len(data.Rows))
	}
	if data.Rows[0].Feature != "upload" || data.Rows[0].TotalUsage != 50 {
		t.Errorf("Expected top feature upload:50, got %+v", data.Rows[0])
	}
}

func TestResolveWidget_Alert(t *testing.T) {
	tests := []struct {
		name      string
		rate      int64
		triggered bool
	}{
		{"below threshold", 500, false},
		{"above threshold", 1500, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(nil, nil, tt.rate)

			data, err := p.ResolveWidget(context.Background(), widget(models.WidgetAlert))
			if err != nil {
				t.Fatalf("ResolveWidget failed: %v", err)
			}
			if data.Alert == nil {
				t.Fatal("Expected alert payload")
			}
			if data.Alert.Triggered != tt.triggered {
				t.Errorf("Expected triggered=%v at rate %d, got %v", tt.triggered, tt.rate, data.Alert.Triggered)
			}
			if tt.triggered && data.Alert.Message == "" {
				t.Error("Expected message on triggered alert")
			}
			if !tt.triggered && data.Alert.Message != "" {
				t.Errorf("Expected empty message below threshold, got %q", data.Alert.Message)
			}
		})
	}
}
