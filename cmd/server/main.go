// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package main is the entry point for the Pulseboard server.
//
// Pulseboard ingests product usage events, aggregates them into per-feature
// analytics, ranks feature popularity, synthesizes business-intelligence
// reports, forecasts churn and usage trends, and resolves dashboard widget
// data over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 loading (defaults, config.yaml, PB_ env vars)
//  2. Durable log: BadgerDB-backed event log (in-memory when no path is set)
//  3. Collaborators: circuit-breaker-guarded actor registry, analytics sink
//     and period source
//  4. Domain engines: aggregation, popularity, reports, forecasting, dashboards
//  5. Supervisor tree: durable-log maintenance and the HTTP server, with
//     failure isolation between the data and API layers
//
// # Configuration
//
// Highest priority wins: PB_-prefixed environment variables, then the YAML
// config file (config.yaml or CONFIG_PATH), then built-in defaults.
//
//	export PB_SERVER_ADDR=:9000
//	export PB_EVENTSTORE_BADGER_PATH=/data/pulseboard/events
//	export PB_LOG_LEVEL=debug
//	./pulseboard
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests within the configured timeout, then the durable log
// is flushed and closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/pulseboard/internal/aggregation"
	"github.com/tomtom215/pulseboard/internal/api"
	"github.com/tomtom215/pulseboard/internal/collab"
	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/forecast"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metricscache"
	"github.com/tomtom215/pulseboard/internal/popularity"
	"github.com/tomtom215/pulseboard/internal/report"
	"github.com/tomtom215/pulseboard/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Caller:    cfg.Log.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("badger_path", cfg.EventStore.BadgerPath).
		Msg("Starting Pulseboard")

	durable, err := eventstore.OpenDurableLog(cfg.EventStore.BadgerPath, cfg.EventStore.DurableCapacity)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open durable event log")
	}
	defer func() {
		if err := durable.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing durable event log")
		}
	}()

	events := eventstore.New(eventstore.Config{
		BucketCapacity:  cfg.EventStore.BucketCapacity,
		DurableCapacity: cfg.EventStore.DurableCapacity,
		IngestWindow:    cfg.EventStore.IngestWindow,
	}, durable)

	// Collaborators are static in-process implementations behind circuit
	// breakers; deployments swap them for real upstream clients.
	guardCfg := collab.GuardConfig{
		CallTimeout:      cfg.Collaborators.CallTimeout,
		FailureThreshold: cfg.Collaborators.FailureThreshold,
		OpenTimeout:      cfg.Collaborators.OpenTimeout,
	}
	registry := collab.NewGuardedRegistry(
		collab.NewStaticRegistry(cfg.Collaborators.RegisteredFallback),
		named(guardCfg, "actor-registry"),
		cfg.Collaborators.RegisteredFallback,
	)
	sink := collab.NewGuardedSink(collab.NopSink{}, named(guardCfg, "analytics-sink"))
	periods := collab.NewGuardedPeriodSource(collab.NewStaticPeriodSource(), named(guardCfg, "period-source"))

	snapshots := metricscache.New(metricscache.Config{
		BucketCapacity: cfg.MetricsCache.BucketCapacity,
		SinkRate:       cfg.MetricsCache.SinkRate,
		SinkBurst:      cfg.MetricsCache.SinkBurst,
	}, sink)

	aggregator := aggregation.New(aggregation.Config{
		DefaultRegisteredTotal: cfg.Aggregation.DefaultRegisteredTotal,
	}, events, registry)

	ranker := popularity.New(popularity.Config{
		TrailingWindow: cfg.Popularity.TrailingWindow,
		CurrentWindow:  cfg.Popularity.CurrentWindow,
	}, aggregator)

	reports := report.New(report.Config{
		CacheTTL:           cfg.Report.CacheTTL,
		ErrorRateThreshold: cfg.Report.ErrorRateThreshold,
		LatencyThresholdMs: cfg.Report.LatencyThresholdMs,
	}, periods)

	forecaster := forecast.New(forecast.Config{
		RecencyWeight:           cfg.Forecast.RecencyWeight,
		FrequencyWeight:         cfg.Forecast.FrequencyWeight,
		FrequencyWindowDays:     cfg.Forecast.FrequencyWindowDays,
		InactivityThresholdDays: cfg.Forecast.InactivityThresholdDays,
		MedianGapFactor:         cfg.Forecast.MedianGapFactor,
		RecencyFloorDays:        cfg.Forecast.RecencyFloorDays,
		TrendWindow:             cfg.Forecast.TrendWindow,
		Horizon:                 cfg.Forecast.Horizon,
		SlopeEpsilon:            cfg.Forecast.SlopeEpsilon,
	}, events)

	widgets := dashboard.New(dashboard.Config{
		ChartPoints:      cfg.Dashboard.ChartPoints,
		ComparisonWindow: cfg.Dashboard.ComparisonWindow,
		TableLimit:       cfg.Dashboard.TableLimit,
		AlertThreshold:   cfg.Dashboard.AlertThreshold,
	}, events, aggregator, events)

	server := api.NewServer(events, snapshots, aggregator, ranker, reports, forecaster, widgets)
	handler := server.Routes(api.RouterConfig{
		CORSAllowedOrigins:      cfg.API.CORSOrigins,
		RateLimitRequests:       cfg.API.RateLimitRequests,
		RateLimitWindow:         cfg.API.RateLimitWindow,
		HealthRateLimitRequests: cfg.API.HealthRateLimitRequests,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(eventstore.NewFlushService(durable, cfg.EventStore.FlushInterval))
	tree.AddAPIService(supervisor.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Pulseboard stopped gracefully")
}

// named returns a copy of the guard config with the collaborator name set.
func named(cfg collab.GuardConfig, name string) collab.GuardConfig {
	cfg.Name = name
	return cfg
}
