// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package collab

import (
	"context"
	"time"

	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/models"
)

// GuardedSink wraps an AnalyticsSink with a guard. TrackEvent is
// fire-and-forget: failures are logged at debug level and swallowed so
// telemetry can never break the action it describes.
type GuardedSink struct {
	sink  AnalyticsSink
	guard *Guard
}

// NewGuardedSink wraps sink.
func NewGuardedSink(sink AnalyticsSink, cfg GuardConfig) *GuardedSink {
	if cfg.Name == "" {
		cfg.Name = "analytics_sink"
	}
	return &GuardedSink{sink: sink, guard: NewGuard(cfg)}
}

// TrackEvent forwards the event under the guard. Always returns nil.
func (s *GuardedSink) TrackEvent(ctx context.Context, name string, payload map[string]interface{}) error {
	_, err := s.guard.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.sink.TrackEvent(ctx, name, payload)
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("event", name).Msg("Analytics sink emit dropped")
	}
	return nil
}

// GuardedRegistry wraps an ActorRegistry with a guard and the documented
// fallback values: nil registration time, tier "free", and a configured
// fallback population count.
type GuardedRegistry struct {
	registry      ActorRegistry
	guard         *Guard
	fallbackCount int
}

// NewGuardedRegistry wraps registry. fallbackCount is the registered-actor
// count substituted when the registry is unavailable; values below 1 are
// coerced to 1 to keep adoption-rate denominators nonzero.
func NewGuardedRegistry(registry ActorRegistry, cfg GuardConfig, fallbackCount int) *GuardedRegistry {
	if cfg.Name == "" {
		cfg.Name = "actor_registry"
	}
	if fallbackCount < 1 {
		fallbackCount = 1
	}
	return &GuardedRegistry{registry: registry, guard: NewGuard(cfg), fallbackCount: fallbackCount}
}

// RegistrationTime returns the actor's registration time, or nil when the
// registry fails or does not know the actor.
func (r *GuardedRegistry) RegistrationTime(ctx context.Context, userID string) (*time.Time, error) {
	result, err := r.guard.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return r.registry.RegistrationTime(ctx, userID)
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("user_id", userID).Msg("Registry registration lookup degraded")
		return nil, nil
	}
	ts, _ := result.(*time.Time)
	return ts, nil
}

// Tier returns the actor's tier, or "free" when the registry fails.
func (r *GuardedRegistry) Tier(ctx context.Context, userID string) (string, error) {
	result, err := r.guard.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return r.registry.Tier(ctx, userID)
	})
	if err != nil {
		return DefaultTier, nil
	}
	tier, ok := result.(string)
	if !ok || tier == "" {
		return DefaultTier, nil
	}
	return tier, nil
}

// TotalRegisteredCount returns the registered population, or the configured
// fallback when the registry fails.
func (r *GuardedRegistry) TotalRegisteredCount(ctx context.Context) (int, error) {
	result, err := r.guard.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return r.registry.TotalRegisteredCount(ctx)
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Registry population lookup degraded")
		return r.fallbackCount, nil
	}
	count, ok := result.(int)
	if !ok || count < 1 {
		return r.fallbackCount, nil
	}
	return count, nil
}

// GuardedPeriodSource wraps a PeriodSource with a guard, substituting the
// zero-valued period document on failure so report generation degrades
// gracefully instead of raising.
type GuardedPeriodSource struct {
	source PeriodSource
	guard  *Guard
}

// NewGuardedPeriodSource wraps source.
func NewGuardedPeriodSource(source PeriodSource, cfg GuardConfig) *GuardedPeriodSource {
	if cfg.Name == "" {
		cfg.Name = "period_source"
	}
	return &GuardedPeriodSource{source: source, guard: NewGuard(cfg)}
}

// PeriodData fetches the period document, or its zero shape on failure.
func (p *GuardedPeriodSource) PeriodData(ctx context.Context, start, end time.Time, granularity models.Granularity, metricNames []string) (models.PeriodData, error) {
	result, err := p.guard.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.source.PeriodData(ctx, start, end, granularity, metricNames)
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Period source degraded to zero-valued document")
		return models.ZeroPeriodData(start, end, granularity), nil
	}
	data, ok := result.(models.PeriodData)
	if !ok {
		return models.ZeroPeriodData(start, end, granularity), nil
	}
	return data, nil
}
