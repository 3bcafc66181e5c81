// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.EventStore.BucketCapacity != 1000 {
		t.Errorf("EventStore.BucketCapacity = %d, want 1000", cfg.EventStore.BucketCapacity)
	}
	if cfg.Popularity.TrailingWindow != 7*24*time.Hour {
		t.Errorf("Popularity.TrailingWindow = %s, want 168h", cfg.Popularity.TrailingWindow)
	}
	if cfg.Forecast.RecencyWeight != 0.6 {
		t.Errorf("Forecast.RecencyWeight = %v, want 0.6", cfg.Forecast.RecencyWeight)
	}
	if cfg.API.RateLimitRequests != 300 {
		t.Errorf("API.RateLimitRequests = %d, want 300", cfg.API.RateLimitRequests)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PB_SERVER_ADDR", ":9000")
	t.Setenv("PB_LOG_LEVEL", "debug")
	t.Setenv("PB_EVENTSTORE_BUCKET_CAPACITY", "250")
	t.Setenv("PB_REPORT_CACHE_TTL", "30m")
	t.Setenv("PB_API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.EventStore.BucketCapacity != 250 {
		t.Errorf("EventStore.BucketCapacity = %d, want 250", cfg.EventStore.BucketCapacity)
	}
	if cfg.Report.CacheTTL != 30*time.Minute {
		t.Errorf("Report.CacheTTL = %s, want 30m", cfg.Report.CacheTTL)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != len(wantOrigins) {
		t.Fatalf("API.CORSOrigins = %v, want %v", cfg.API.CORSOrigins, wantOrigins)
	}
	for i, want := range wantOrigins {
		if cfg.API.CORSOrigins[i] != want {
			t.Errorf("API.CORSOrigins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want)
		}
	}

	// Defaults still apply for unset values.
	if cfg.MetricsCache.SinkBurst != 20 {
		t.Errorf("MetricsCache.SinkBurst = %d, want 20 (default)", cfg.MetricsCache.SinkBurst)
	}
}

func TestLoadConfigFile(t *testing.T) {
	configContent := `
server:
  addr: ":7070"
eventstore:
  durable_capacity: 5000
  flush_interval: 2m
dashboard:
  alert_threshold: 2500
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.EventStore.DurableCapacity != 5000 {
		t.Errorf("EventStore.DurableCapacity = %d, want 5000", cfg.EventStore.DurableCapacity)
	}
	if cfg.EventStore.FlushInterval != 2*time.Minute {
		t.Errorf("EventStore.FlushInterval = %s, want 2m", cfg.EventStore.FlushInterval)
	}
	if cfg.Dashboard.AlertThreshold != 2500 {
		t.Errorf("Dashboard.AlertThreshold = %d, want 2500", cfg.Dashboard.AlertThreshold)
	}
	if cfg.EventStore.BucketCapacity != 1000 {
		t.Errorf("EventStore.BucketCapacity = %d, want 1000 (default)", cfg.EventStore.BucketCapacity)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	configContent := `
server:
  addr: ":7070"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PB_SERVER_ADDR", ":6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":6060" {
		t.Errorf("Server.Addr = %q, want :6060 (env over file)", cfg.Server.Addr)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		{
			name:   "invalid log level",
			envKey: "PB_LOG_LEVEL",
			envVal: "verbose",
			errMsg: "log.level",
		},
		{
			name:   "invalid log format",
			envKey: "PB_LOG_FORMAT",
			envVal: "xml",
			errMsg: "log.format",
		},
		{
			name:   "trend window too small",
			envKey: "PB_FORECAST_TREND_WINDOW",
			envVal: "1",
			errMsg: "trend_window",
		},
		{
			name:   "zero rate limit",
			envKey: "PB_API_RATE_LIMIT_REQUESTS",
			envVal: "0",
			errMsg: "rate_limit_requests",
		},
		{
			name:   "zero flush interval",
			envKey: "PB_EVENTSTORE_FLUSH_INTERVAL",
			envVal: "0s",
			errMsg: "flush_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PB_SERVER_ADDR", "server.addr"},
		{"PB_EVENTSTORE_BUCKET_CAPACITY", "eventstore.bucket_capacity"},
		{"PB_FORECAST_INACTIVITY_THRESHOLD_DAYS", "forecast.inactivity_threshold_days"},
		{"PB_API_CORS_ORIGINS", "api.cors_origins"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
