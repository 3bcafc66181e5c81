// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package validation

import (
	"testing"

	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/models"
)

func validWidget() models.DashboardWidget {
	return models.DashboardWidget{
		ID:                 "w1",
		Type:               models.WidgetMetric,
		Title:              "Events",
		Position:           models.WidgetPosition{X: 0, Y: 0, Width: 2, Height: 2},
		DataSource:         "upload",
		RefreshIntervalSec: 30,
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	if err := ValidateStruct(validWidget()); err != nil {
		t.Errorf("Expected valid widget to pass, got %v", err)
	}
}

func TestValidateStruct_Failures(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*models.DashboardWidget)
	}{
		{"missing id", func(w *models.DashboardWidget) { w.ID = "" }},
		{"unknown type", func(w *models.DashboardWidget) { w.Type = "gauge" }},
		{"missing data source", func(w *models.DashboardWidget) { w.DataSource = "" }},
		{"zero refresh interval", func(w *models.DashboardWidget) { w.RefreshIntervalSec = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			widget := validWidget()
			tt.mut(&widget)

			err := ValidateStruct(widget)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !engine.IsValidation(err) {
				t.Errorf("Expected engine.ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateStruct_NegativePosition(t *testing.T) {
	widget := validWidget()
	widget.Position = models.WidgetPosition{X: -1, Y: 0, Width: 2, Height: 2}

	if err := ValidateStruct(widget); !engine.IsValidation(err) {
		t.Errorf("Expected validation error for negative position, got %v", err)
	}
}
