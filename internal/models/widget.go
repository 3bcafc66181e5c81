// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

// WidgetType selects how a dashboard widget's data is resolved.
type WidgetType string

// Dashboard widget kinds.
const (
	WidgetMetric WidgetType = "metric"
	WidgetChart  WidgetType = "chart"
	WidgetTable  WidgetType = "table"
	WidgetAlert  WidgetType = "alert"
	WidgetKPI    WidgetType = "kpi"
)

// WidgetPosition is the layout rectangle of a widget on a dashboard grid.
type WidgetPosition struct {
	X      int `json:"x" validate:"min=0"`
	Y      int `json:"y" validate:"min=0"`
	Width  int `json:"width" validate:"min=1"`
	Height int `json:"height" validate:"min=1"`
}

// DashboardWidget declares one dashboard cell. The refresh interval is
// advisory metadata for the caller's scheduler; the data provider itself is
// stateless per call.
type DashboardWidget struct {
	ID       string         `json:"id" validate:"required"`
	Type     WidgetType     `json:"type" validate:"required,oneof=metric chart table alert kpi"`
	Title    string         `json:"title"`
	Position WidgetPosition `json:"position"`

	// DataSource names the feature or metric the widget reads.
	DataSource string `json:"data_source" validate:"required"`

	RefreshIntervalSec int `json:"refresh_interval_sec" validate:"min=1"`
}
