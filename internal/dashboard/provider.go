// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
	"github.com/tomtom215/pulseboard/internal/validation"
)

// EventSource supplies raw events for chart series and metric deltas.
type EventSource interface {
	Query(ctx context.Context, filter eventstore.QueryFilter) ([]models.UsageEvent, error)
}

// Aggregator supplies feature aggregates for table widgets.
type Aggregator interface {
	Aggregate(ctx context.Context, filter aggregation.Filter) ([]models.FeatureUsageAnalytics, error)
}

// RateSource exposes the current ingest rate for alert widgets.
type RateSource interface {
	IngestRate() int64
}

// Config tunes the provider.
type Config struct {
	// ChartPoints is the fixed series length chart widgets resolve to.
	// Default 10.
	ChartPoints int

	// ComparisonWindow sizes the current and previous periods metric
	// deltas compare. Default 7 days.
	ComparisonWindow time.Duration

	// TableLimit bounds table widget row sets. Default 5.
	TableLimit int

	// AlertThreshold is the ingest-rate level that trips alert widgets.
	// Default 1000.
	AlertThreshold int64
}

func (c Config) withDefaults() Config {
	if c.ChartPoints < 1 {
		c.ChartPoints = 10
	}
	if c.ComparisonWindow <= 0 {
		c.ComparisonWindow = 7 * 24 * time.Hour
	}
	if c.TableLimit < 1 {
		c.TableLimit = 5
	}
	if c.AlertThreshold < 1 {
		c.AlertThreshold = 1000
	}
	return c
}

// TableRow is one row of a table widget payload.
type TableRow struct {
	Feature     string `json:"feature"`
	TotalUsage  int    `json:"total_usage"`
	UniqueUsers int    `json:"unique_users"`
}

// AlertState is the payload of an alert widget. Message is empty when the
// threshold has not tripped.
type AlertState struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message,omitempty"`
	Value     int64  `json:"value"`
	Threshold int64  `json:"threshold"`
}

// WidgetData is the resolved payload for one widget. Exactly one of the
// kind-specific fields is populated, matching Kind.
type WidgetData struct {
	WidgetID string            `json:"widget_id"`
	Kind     models.WidgetType `json:"kind"`

	Value        float64 `json:"value,omitempty"`
	DeltaPercent float64 `json:"delta_percent,omitempty"`

	Series []models.SeriesPoint `json:"series,omitempty"`
	Rows   []TableRow           `json:"rows,omitempty"`
	Alert  *AlertState          `json:"alert,omitempty"`
}

// Provider resolves dashboard widgets to data payloads.
type Provider struct {
	cfg        Config
	source     EventSource
	aggregator Aggregator
	rates      RateSource

	now func() time.Time
}

// New creates a widget data provider.
func New(cfg Config, source EventSource, aggregator Aggregator, rates RateSource) *Provider {
	return &Provider{
		cfg:        cfg.withDefaults(),
		source:     source,
		aggregator: aggregator,
		rates:      rates,
		now:        time.Now,
	}
}

// SetClock replaces the provider's clock. Test hook.
func (p *Provider) SetClock(now func() time.Time) {
	p.now = now
}

// ResolveWidget validates the widget and dispatches on its kind.
func (p *Provider) ResolveWidget(ctx context.Context, widget models.DashboardWidget) (WidgetData, error) {
	if err := validation.ValidateStruct(widget); err != nil {
		return WidgetData{}, err
	}

	metrics.WidgetResolutions.WithLabelValues(string(widget.Type)).Inc()

	switch widget.Type {
	case models.WidgetMetric, models.WidgetKPI:
		return p.resolveMetric(ctx, widget)
	case models.WidgetChart:
		return p.resolveChart(ctx, widget)
	case models.WidgetTable:
		return p.resolveTable(ctx, widget)
	case models.WidgetAlert:
		return p.resolveAlert(widget), nil
	default:
		return WidgetData{}, engine.NewValidationError("type", fmt.Sprintf("unknown widget type %q", widget.Type))
	}
}

// resolveMetric compares the data source's event count in the current
// window against the previous window of equal length.
func (p *Provider) resolveMetric(ctx context.Context, widget models.DashboardWidget) (WidgetData, error) {
	now := p.now()
	currentStart := now.Add(-p.cfg.ComparisonWindow)
	previousStart := currentStart.Add(-p.cfg.ComparisonWindow)

	current, err := p.countEvents(ctx, widget.DataSource, currentStart, now)
	if err != nil {
		return WidgetData{}, err
	}
	previous, err := p.countEvents(ctx, widget.DataSource, previousStart, currentStart)
	if err != nil {
		return WidgetData{}, err
	}

	delta := 0.0
	if previous > 0 {
		delta = math.Round(float64(current-previous)/float64(previous)*100*100) / 100
	}
	return WidgetData{
		WidgetID:     widget.ID,
		Kind:         widget.Type,
		Value:        float64(current),
		DeltaPercent: delta,
	}, nil
}

// resolveChart builds a daily event-volume series covering the last
// ChartPoints days, zero-filled so every label is present.
func (p *Provider) resolveChart(ctx context.Context, widget models.DashboardWidget) (WidgetData, error) {
	now := p.now().UTC()
	end := now
	start := now.AddDate(0, 0, -(p.cfg.ChartPoints - 1))
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	events, err := p.source.Query(ctx, eventstore.QueryFilter{
		Feature: widget.DataSource,
		Start:   &dayStart,
		End:     &end,
	})
	if err != nil {
		return WidgetData{}, fmt.Errorf("failed to fetch chart events: %w", err)
	}

	counts := make(map[string]float64)
	for _, event := range events {
		counts[event.Day()]++
	}

	series := make([]models.SeriesPoint, 0, p.cfg.ChartPoints)
	for i := 0; i < p.cfg.ChartPoints; i++ {
		day := dayStart.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, models.SeriesPoint{Date: day, Value: counts[day]})
	}
	return WidgetData{WidgetID: widget.ID, Kind: widget.Type, Series: series}, nil
}

// resolveTable returns the top features by usage.
func (p *Provider) resolveTable(ctx context.Context, widget models.DashboardWidget) (WidgetData, error) {
	aggregates, err := p.aggregator.Aggregate(ctx, aggregation.Filter{})
	if err != nil {
		return WidgetData{}, fmt.Errorf("failed to aggregate for table widget: %w", err)
	}

	rows := make([]TableRow, 0, p.cfg.TableLimit)
	for _, aggregate := range aggregates {
		if len(rows) == p.cfg.TableLimit {
			break
		}
		rows = append(rows, TableRow{
			Feature:     aggregate.Feature,
			TotalUsage:  aggregate.TotalUsage,
			UniqueUsers: aggregate.UniqueUsers,
		})
	}
	return WidgetData{WidgetID: widget.ID, Kind: widget.Type, Rows: rows}, nil
}

// resolveAlert checks the sliding-window ingest rate against the threshold.
func (p *Provider) resolveAlert(widget models.DashboardWidget) WidgetData {
	rate := p.rates.IngestRate()
	alert := &AlertState{
		Value:     rate,
		Threshold: p.cfg.AlertThreshold,
	}
	if rate > p.cfg.AlertThreshold {
		alert.Triggered = true
		alert.Message = fmt.Sprintf("Ingest rate %d exceeds threshold %d", rate, p.cfg.AlertThreshold)
	}
	return WidgetData{WidgetID: widget.ID, Kind: widget.Type, Alert: alert}
}

// countEvents counts the data source's events in [start, end].
func (p *Provider) countEvents(ctx context.Context, feature string, start, end time.Time) (int, error) {
	events, err := p.source.Query(ctx, eventstore.QueryFilter{
		Feature: feature,
		Start:   &start,
		End:     &end,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return len(events), nil
}
