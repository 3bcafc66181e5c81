// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/collab"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/forecast"
	"github.com/tomtom215/pulseboard/internal/metricscache"
	"github.com/tomtom215/pulseboard/internal/popularity"
	"github.com/tomtom215/pulseboard/internal/report"
)

// newTestServer assembles a full server over an in-memory durable log and
// static collaborators.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	durable, err := eventstore.OpenDurableLog("", 1000)
	if err != nil {
		t.Fatalf("Failed to open in-memory durable log: %v", err)
	}
	t.Cleanup(func() {
		if err := durable.Close(); err != nil {
			t.Errorf("Failed to close durable log: %v", err)
		}
	})

	events := eventstore.New(eventstore.Config{}, durable)
	registry := collab.NewStaticRegistry(10)
	snapshots := metricscache.New(metricscache.Config{}, collab.NopSink{})
	aggregator := aggregation.New(aggregation.Config{}, events, registry)
	ranker := popularity.New(popularity.Config{}, aggregator)
	reports := report.New(report.Config{}, collab.NewStaticPeriodSource())
	forecaster := forecast.New(forecast.Config{}, events)
	widgets := dashboard.New(dashboard.Config{}, events, aggregator, events)

	server := NewServer(events, snapshots, aggregator, ranker, reports, forecaster, widgets)
	return server, server.Routes(RouterConfig{})
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestRecordEvent(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/events", map[string]interface{}{
		"user_id":    "u1",
		"session_id": "sess-1",
		"feature":    "upload",
		"action":     "start",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("Expected success response")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestRecordEvent_ValidationFailure(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/events", map[string]interface{}{
		"user_id":    "u1",
		"session_id": "sess-1",
		"action":     "start",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Expected VALIDATION_FAILED error, got %+v", resp.Error)
	}
}

func TestRecordEvent_MalformedBody(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestCollectMetrics(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/metrics", map[string]interface{}{
		"user_id": "u1",
		"financial": map[string]interface{}{
			"revenue": 1200.50,
		},
		"dimensions": map[string]interface{}{
			"user_tier": "pro",
		},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFeatureAnalytics(t *testing.T) {
	_, handler := newTestServer(t)

	for _, action := range []string{"start", "finish", "start"} {
		rec := postJSON(t, handler, "/api/v1/events", map[string]interface{}{
			"user_id":    "u1",
			"session_id": "sess-1",
			"feature":    "upload",
			"action":     action,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Record failed: %d", rec.Code)
		}
	}

	rec := get(t, handler, "/api/v1/analytics/features?feature=upload")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Feature    string `json:"feature"`
			TotalUsage int    `json:"total_usage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].TotalUsage != 3 {
		t.Errorf("Expected upload with totalUsage 3, got %+v", resp.Data)
	}
}

func TestFeatureAnalytics_BadTimeRange(t *testing.T) {
	_, handler := newTestServer(t)

	rec := get(t, handler, "/api/v1/analytics/features?start=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-RFC3339 start, got %d", rec.Code)
	}
}

func TestPopularFeatures(t *testing.T) {
	_, handler := newTestServer(t)

	for i := 0; i < 3; i++ {
		postJSON(t, handler, "/api/v1/events", map[string]interface{}{
			"user_id": "u1", "session_id": "s", "feature": "upload", "action": "start",
		})
	}
	postJSON(t, handler, "/api/v1/events", map[string]interface{}{
		"user_id": "u1", "session_id": "s", "feature": "export", "action": "run",
	})

	rec := get(t, handler, "/api/v1/analytics/popular?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data []struct {
			Feature string `json:"feature"`
			Usage   int    `json:"usage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Feature != "upload" {
		t.Errorf("Expected single upload entry, got %+v", resp.Data)
	}
}

func TestPopularFeatures_InvalidLimit(t *testing.T) {
	_, handler := newTestServer(t)

	rec := get(t, handler, "/api/v1/analytics/popular?limit=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", rec.Code)
	}
}

func TestGenerateAndRetrieveReport(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/reports", map[string]interface{}{
		"type": "executive",
		"period": map[string]interface{}{
			"start":       "2026-03-01T00:00:00Z",
			"end":         "2026-03-31T00:00:00Z",
			"granularity": "day",
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatal("Expected report ID")
	}

	fetched := get(t, handler, "/api/v1/reports/"+created.Data.ID)
	if fetched.Code != http.StatusOK {
		t.Errorf("Expected 200 on retrieval, got %d", fetched.Code)
	}
}

func TestGenerateReport_InvalidType(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/reports", map[string]interface{}{
		"type": "quarterly",
		"period": map[string]interface{}{
			"start":       "2026-03-01T00:00:00Z",
			"end":         "2026-03-31T00:00:00Z",
			"granularity": "day",
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown report type, got %d", rec.Code)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	_, handler := newTestServer(t)

	rec := get(t, handler, "/api/v1/reports/no-such-report")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND error, got %+v", resp.Error)
	}
}

func TestForecasts(t *testing.T) {
	server, handler := newTestServer(t)
	server.SetClock(func() time.Time {
		return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	})

	postJSON(t, handler, "/api/v1/events", map[string]interface{}{
		"user_id": "u1", "session_id": "s", "feature": "upload", "action": "start",
	})

	rec := get(t, handler, "/api/v1/forecasts?user_id=u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ChurnPredictions []struct {
				UserID string `json:"user_id"`
			} `json:"churn_predictions"`
			UsageForecast []struct {
				Trend string `json:"trend"`
			} `json:"usage_forecast"`
			RevenueProjection []interface{} `json:"revenue_projection"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(resp.Data.ChurnPredictions) != 1 || resp.Data.ChurnPredictions[0].UserID != "u1" {
		t.Errorf("Expected churn prediction for u1, got %+v", resp.Data.ChurnPredictions)
	}
	if len(resp.Data.UsageForecast) == 0 {
		t.Error("Expected usage forecast points")
	}
	if len(resp.Data.RevenueProjection) == 0 {
		t.Error("Expected revenue projection points")
	}
}

func TestWidgetData(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/widgets/data", map[string]interface{}{
		"id":                   "w1",
		"type":                 "alert",
		"title":                "Ingest",
		"position":             map[string]int{"x": 0, "y": 0, "width": 2, "height": 2},
		"data_source":          "upload",
		"refresh_interval_sec": 30,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Kind  string `json:"kind"`
			Alert struct {
				Triggered bool `json:"triggered"`
			} `json:"alert"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Data.Kind != "alert" {
		t.Errorf("Expected alert payload, got %s", resp.Data.Kind)
	}
}

func TestWidgetData_InvalidWidget(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/api/v1/widgets/data", map[string]interface{}{
		"id":   "w1",
		"type": "gauge",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown widget type, got %d", rec.Code)
	}
}

func TestClearCaches(t *testing.T) {
	_, handler := newTestServer(t)

	postJSON(t, handler, "/api/v1/events", map[string]interface{}{
		"user_id": "u1", "session_id": "s", "feature": "upload", "action": "start",
	})

	rec := postJSON(t, handler, "/api/v1/admin/caches/clear", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// The durable log still serves queries after a cache clear.
	analytics := get(t, handler, "/api/v1/analytics/features")
	if analytics.Code != http.StatusOK {
		t.Errorf("Expected analytics to survive cache clear, got %d", analytics.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	if rec := get(t, handler, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("Expected live 200, got %d", rec.Code)
	}
	if rec := get(t, handler, "/api/v1/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("Expected ready 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := get(t, handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from metrics endpoint, got %d", rec.Code)
	}
}
