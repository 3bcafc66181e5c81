// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/forecast"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metricscache"
	"github.com/tomtom215/pulseboard/internal/models"
	"github.com/tomtom215/pulseboard/internal/popularity"
	"github.com/tomtom215/pulseboard/internal/report"
)

// historyDays is the lookback used to build forecast input series.
const historyDays = 12

// Server is the engine's composition point: it owns the stores and
// analytics components and serves their read-only accessors over HTTP.
type Server struct {
	events     *eventstore.Store
	snapshots  *metricscache.Cache
	aggregator *aggregation.Engine
	ranker     *popularity.Ranker
	reports    *report.Synthesizer
	forecaster *forecast.Predictor
	widgets    *dashboard.Provider

	now func() time.Time
}

// NewServer assembles the server from its injected components.
func NewServer(events *eventstore.Store, snapshots *metricscache.Cache,
	aggregator *aggregation.Engine, ranker *popularity.Ranker,
	reports *report.Synthesizer, forecaster *forecast.Predictor,
	widgets *dashboard.Provider) *Server {

	return &Server{
		events:     events,
		snapshots:  snapshots,
		aggregator: aggregator,
		ranker:     ranker,
		reports:    reports,
		forecaster: forecaster,
		widgets:    widgets,
		now:        time.Now,
	}
}

// SetClock replaces the server's clock. Test hook.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// eventRequest is the RecordEvent request body.
type eventRequest struct {
	UserID      string                  `json:"user_id"`
	SessionID   string                  `json:"session_id"`
	Feature     string                  `json:"feature"`
	Action      string                  `json:"action"`
	Metadata    map[string]string       `json:"metadata"`
	Context     models.EventContext     `json:"context"`
	Performance models.EventPerformance `json:"performance"`
}

// RecordEvent handles POST /api/v1/events.
func (s *Server) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	event, err := s.events.Record(r.Context(), eventstore.EventInput{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Feature:     req.Feature,
		Action:      req.Action,
		Metadata:    req.Metadata,
		Context:     req.Context,
		Performance: req.Performance,
	})
	if err != nil {
		if engine.IsValidation(err) {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to record event")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "failed to record event")
		return
	}
	respondSuccess(w, r, http.StatusCreated, event)
}

// snapshotRequest is the CollectMetrics request body.
type snapshotRequest struct {
	UserID         string                    `json:"user_id"`
	OrganizationID string                    `json:"organization_id"`
	Performance    models.PerformanceMetrics `json:"performance"`
	Business       models.BusinessMetrics    `json:"business"`
	Usage          models.UsageMetrics       `json:"usage"`
	Financial      models.FinancialMetrics   `json:"financial"`
	Dimensions     models.SnapshotDimensions `json:"dimensions"`
}

// CollectMetrics handles POST /api/v1/metrics.
func (s *Server) CollectMetrics(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	snapshot := s.snapshots.Collect(r.Context(), metricscache.SnapshotInput{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		Performance:    req.Performance,
		Business:       req.Business,
		Usage:          req.Usage,
		Financial:      req.Financial,
		Dimensions:     req.Dimensions,
	})
	respondSuccess(w, r, http.StatusCreated, snapshot)
}

// FeatureAnalytics handles GET /api/v1/analytics/features.
// Optional query parameters: feature, start, end (RFC3339).
func (s *Server) FeatureAnalytics(w http.ResponseWriter, r *http.Request) {
	filter := aggregation.Filter{Feature: r.URL.Query().Get("feature")}

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "start must be RFC3339")
			return
		}
		filter.Start = &start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "end must be RFC3339")
			return
		}
		filter.End = &end
	}

	analytics, err := s.aggregator.Aggregate(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Aggregation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "aggregation failed")
		return
	}
	respondSuccess(w, r, http.StatusOK, analytics)
}

// PopularFeatures handles GET /api/v1/analytics/popular. Optional query
// parameter: limit.
func (s *Server) PopularFeatures(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := s.ranker.PopularFeatures(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Popularity ranking failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "popularity ranking failed")
		return
	}
	respondSuccess(w, r, http.StatusOK, entries)
}

// reportRequest is the GenerateReport request body.
type reportRequest struct {
	Type    models.ReportType   `json:"type"`
	Period  models.ReportPeriod `json:"period"`
	Filters map[string]string   `json:"filters"`
}

// GenerateReport handles POST /api/v1/reports.
func (s *Server) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	generated, err := s.reports.Generate(r.Context(), req.Type, req.Period, req.Filters)
	if err != nil {
		if engine.IsValidation(err) {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Report generation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "report generation failed")
		return
	}
	respondSuccess(w, r, http.StatusCreated, generated)
}

// GetReport handles GET /api/v1/reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cached, err := s.reports.Report(id)
	if err != nil {
		if errors.Is(err, engine.ErrReportNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "report not found")
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "report retrieval failed")
		return
	}
	respondSuccess(w, r, http.StatusOK, cached)
}

// Forecasts handles GET /api/v1/forecasts. Optional query parameter:
// user_id narrows churn scoring to one actor.
func (s *Server) Forecasts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	churn, err := s.forecaster.PredictChurn(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Churn prediction failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "churn prediction failed")
		return
	}

	usageHistory, err := s.usageHistory(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to build usage history")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "forecast input unavailable")
		return
	}

	result := models.ForecastResult{
		ChurnPredictions:  churn,
		UsageForecast:     s.forecaster.ForecastUsage(usageHistory),
		RevenueProjection: s.forecaster.ProjectRevenue(s.revenueHistory()),
	}
	respondSuccess(w, r, http.StatusOK, result)
}

// WidgetData handles POST /api/v1/widgets/data.
func (s *Server) WidgetData(w http.ResponseWriter, r *http.Request) {
	var widget models.DashboardWidget
	if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	data, err := s.widgets.ResolveWidget(r.Context(), widget)
	if err != nil {
		if engine.IsValidation(err) {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Widget resolution failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "widget resolution failed")
		return
	}
	respondSuccess(w, r, http.StatusOK, data)
}

// ClearCaches handles POST /api/v1/admin/caches/clear. The durable event
// log survives; only in-memory state is dropped.
func (s *Server) ClearCaches(w http.ResponseWriter, r *http.Request) {
	s.events.ClearCaches()
	s.snapshots.Clear()

	logging.Ctx(r.Context()).Info().Msg("In-memory caches cleared")
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// HealthLive handles GET /api/v1/health/live.
func (s *Server) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// durable event log to answer queries.
func (s *Server) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.events.Query(r.Context(), eventstore.QueryFilter{}); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "event store not ready")
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// usageHistory builds the daily event-volume series forecasts extrapolate.
func (s *Server) usageHistory(ctx context.Context) ([]models.SeriesPoint, error) {
	now := s.now().UTC()
	start := now.AddDate(0, 0, -(historyDays - 1))
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	events, err := s.events.Query(ctx, eventstore.QueryFilter{Start: &dayStart, End: &now})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]float64)
	for _, event := range events {
		counts[event.Day()]++
	}

	series := make([]models.SeriesPoint, 0, historyDays)
	for i := 0; i < historyDays; i++ {
		day := dayStart.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, models.SeriesPoint{Date: day, Value: counts[day]})
	}
	return series, nil
}

// revenueHistory builds a daily revenue series from global metric
// snapshots. Days without snapshots are omitted so sparse telemetry does
// not read as a revenue collapse.
func (s *Server) revenueHistory() []models.SeriesPoint {
	now := s.now().UTC()

	var series []models.SeriesPoint
	for i := historyDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		snapshots := s.snapshots.Snapshots("", day)
		if len(snapshots) == 0 {
			continue
		}
		var total float64
		for _, snapshot := range snapshots {
			total += snapshot.Financial.Revenue
		}
		series = append(series, models.SeriesPoint{
			Date:  day,
			Value: total / float64(len(snapshots)),
		})
	}
	return series
}
