// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	// CORSAllowedOrigins is empty by default; cross-origin access must be
	// granted explicitly.
	CORSAllowedOrigins []string

	// RateLimitRequests per RateLimitWindow, keyed by client IP.
	// Defaults 300 per minute.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// HealthRateLimitRequests is the permissive limit for health probes.
	// Default 1000 per minute.
	HealthRateLimitRequests int
}

func (c RouterConfig) withDefaults() RouterConfig {
	if c.RateLimitRequests < 1 {
		c.RateLimitRequests = 300
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = time.Minute
	}
	if c.HealthRateLimitRequests < 1 {
		c.HealthRateLimitRequests = 1000
	}
	return c
}

// Routes builds the full route tree.
func (s *Server) Routes(cfg RouterConfig) http.Handler {
	cfg = cfg.withDefaults()

	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.HealthRateLimitRequests, cfg.RateLimitWindow))
		r.Get("/live", s.HealthLive)
		r.Get("/ready", s.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(PrometheusMetrics)
		r.Use(RequestLogging)

		r.Post("/events", s.RecordEvent)
		r.Post("/metrics", s.CollectMetrics)

		r.Get("/analytics/features", s.FeatureAnalytics)
		r.Get("/analytics/popular", s.PopularFeatures)

		r.Post("/reports", s.GenerateReport)
		r.Get("/reports/{id}", s.GetReport)

		r.Get("/forecasts", s.Forecasts)
		r.Post("/widgets/data", s.WidgetData)

		r.Post("/admin/caches/clear", s.ClearCaches)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
