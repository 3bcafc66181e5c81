// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pulseboard/config.yaml",
	"/etc/pulseboard/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces Pulseboard environment variables.
const envPrefix = "PB_"

// Config is the full process configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Log           LogConfig           `koanf:"log"`
	EventStore    EventStoreConfig    `koanf:"eventstore"`
	MetricsCache  MetricsCacheConfig  `koanf:"metricscache"`
	Aggregation   AggregationConfig   `koanf:"aggregation"`
	Popularity    PopularityConfig    `koanf:"popularity"`
	Report        ReportConfig        `koanf:"report"`
	Forecast      ForecastConfig      `koanf:"forecast"`
	Dashboard     DashboardConfig     `koanf:"dashboard"`
	Collaborators CollaboratorsConfig `koanf:"collaborators"`
	API           APIConfig           `koanf:"api"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig tunes the zerolog global logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EventStoreConfig tunes the ingestion layer.
type EventStoreConfig struct {
	BucketCapacity  int           `koanf:"bucket_capacity"`
	DurableCapacity int           `koanf:"durable_capacity"`
	BadgerPath      string        `koanf:"badger_path"`
	IngestWindow    time.Duration `koanf:"ingest_window"`
	FlushInterval   time.Duration `koanf:"flush_interval"`
}

// MetricsCacheConfig tunes the advanced-metrics snapshot cache.
type MetricsCacheConfig struct {
	BucketCapacity int     `koanf:"bucket_capacity"`
	SinkRate       float64 `koanf:"sink_rate"`
	SinkBurst      int     `koanf:"sink_burst"`
}

// AggregationConfig tunes the per-feature aggregation engine.
type AggregationConfig struct {
	DefaultRegisteredTotal int `koanf:"default_registered_total"`
}

// PopularityConfig tunes feature ranking windows.
type PopularityConfig struct {
	TrailingWindow time.Duration `koanf:"trailing_window"`
	CurrentWindow  time.Duration `koanf:"current_window"`
}

// ReportConfig tunes BI report synthesis.
type ReportConfig struct {
	CacheTTL           time.Duration `koanf:"cache_ttl"`
	ErrorRateThreshold float64       `koanf:"error_rate_threshold"`
	LatencyThresholdMs float64       `koanf:"latency_threshold_ms"`
}

// ForecastConfig tunes churn scoring and trend projection.
type ForecastConfig struct {
	RecencyWeight           float64 `koanf:"recency_weight"`
	FrequencyWeight         float64 `koanf:"frequency_weight"`
	FrequencyWindowDays     int     `koanf:"frequency_window_days"`
	InactivityThresholdDays int     `koanf:"inactivity_threshold_days"`
	MedianGapFactor         float64 `koanf:"median_gap_factor"`
	RecencyFloorDays        int     `koanf:"recency_floor_days"`
	TrendWindow             int     `koanf:"trend_window"`
	Horizon                 int     `koanf:"horizon"`
	SlopeEpsilon            float64 `koanf:"slope_epsilon"`
}

// DashboardConfig tunes widget data resolution.
type DashboardConfig struct {
	ChartPoints      int           `koanf:"chart_points"`
	ComparisonWindow time.Duration `koanf:"comparison_window"`
	TableLimit       int           `koanf:"table_limit"`
	AlertThreshold   int64         `koanf:"alert_threshold"`
}

// CollaboratorsConfig tunes circuit breakers around external collaborators.
type CollaboratorsConfig struct {
	CallTimeout        time.Duration `koanf:"call_timeout"`
	FailureThreshold   uint32        `koanf:"failure_threshold"`
	OpenTimeout        time.Duration `koanf:"open_timeout"`
	RegisteredFallback int           `koanf:"registered_fallback"`
}

// APIConfig tunes the HTTP surface.
type APIConfig struct {
	CORSOrigins             []string      `koanf:"cors_origins"`
	RateLimitRequests       int           `koanf:"rate_limit_requests"`
	RateLimitWindow         time.Duration `koanf:"rate_limit_window"`
	HealthRateLimitRequests int           `koanf:"health_rate_limit_requests"`
}

// defaultConfig returns the built-in defaults, applied first and then
// overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		EventStore: EventStoreConfig{
			BucketCapacity:  1000,
			DurableCapacity: 1000,
			BadgerPath:      "", // empty runs the durable log in memory
			IngestWindow:    5 * time.Minute,
			FlushInterval:   time.Minute,
		},
		MetricsCache: MetricsCacheConfig{
			BucketCapacity: 1000,
			SinkRate:       10,
			SinkBurst:      20,
		},
		Aggregation: AggregationConfig{
			DefaultRegisteredTotal: 1,
		},
		Popularity: PopularityConfig{
			TrailingWindow: 7 * 24 * time.Hour,
			CurrentWindow:  0, // all-time
		},
		Report: ReportConfig{
			CacheTTL:           time.Hour,
			ErrorRateThreshold: 0.05,
			LatencyThresholdMs: 1000,
		},
		Forecast: ForecastConfig{
			RecencyWeight:           0.6,
			FrequencyWeight:         0.4,
			FrequencyWindowDays:     8,
			InactivityThresholdDays: 14,
			MedianGapFactor:         3,
			RecencyFloorDays:        7,
			TrendWindow:             12,
			Horizon:                 3,
			SlopeEpsilon:            0.01,
		},
		Dashboard: DashboardConfig{
			ChartPoints:      10,
			ComparisonWindow: 7 * 24 * time.Hour,
			TableLimit:       5,
			AlertThreshold:   1000,
		},
		Collaborators: CollaboratorsConfig{
			CallTimeout:        2 * time.Second,
			FailureThreshold:   5,
			OpenTimeout:        30 * time.Second,
			RegisteredFallback: 1,
		},
		API: APIConfig{
			CORSOrigins:             []string{},
			RateLimitRequests:       300,
			RateLimitWindow:         time.Minute,
			HealthRateLimitRequests: 1000,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. PB_-prefixed environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps PB_SECTION_SOME_KEY to section.some_key. Section
// names carry no underscores, so the first underscore after the prefix is
// the separator.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// sliceConfigPaths are parsed from comma-separated strings when set via
// the environment.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(str, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateEventStore(); err != nil {
		return err
	}
	if err := c.validateForecast(); err != nil {
		return err
	}
	return c.validateAPI()
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("log.level must be one of trace, debug, info, warn, error, fatal, panic; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) validateEventStore() error {
	if c.EventStore.BucketCapacity < 1 {
		return fmt.Errorf("eventstore.bucket_capacity must be at least 1, got %d", c.EventStore.BucketCapacity)
	}
	if c.EventStore.DurableCapacity < 1 {
		return fmt.Errorf("eventstore.durable_capacity must be at least 1, got %d", c.EventStore.DurableCapacity)
	}
	if c.EventStore.FlushInterval <= 0 {
		return fmt.Errorf("eventstore.flush_interval must be positive, got %s", c.EventStore.FlushInterval)
	}
	return nil
}

func (c *Config) validateForecast() error {
	sum := c.Forecast.RecencyWeight + c.Forecast.FrequencyWeight
	if sum <= 0 {
		return fmt.Errorf("forecast weights must sum to a positive value, got %.2f", sum)
	}
	if c.Forecast.TrendWindow < 2 {
		return fmt.Errorf("forecast.trend_window must be at least 2, got %d", c.Forecast.TrendWindow)
	}
	if c.Forecast.Horizon < 1 {
		return fmt.Errorf("forecast.horizon must be at least 1, got %d", c.Forecast.Horizon)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("api.rate_limit_requests must be at least 1, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
	}
	return nil
}
