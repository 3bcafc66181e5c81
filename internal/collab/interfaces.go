// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package collab

import (
	"context"
	"time"

	"github.com/tomtom215/pulseboard/internal/models"
)

// AnalyticsSink receives fire-and-forget tracking events. Implementations
// must not panic; errors are logged by the caller and never raised into the
// path that produced the telemetry.
type AnalyticsSink interface {
	TrackEvent(ctx context.Context, name string, payload map[string]interface{}) error
}

// ActorRegistry resolves actor attributes owned by the user-management
// subsystem. All lookups have documented defaults the engine substitutes
// when the registry is unavailable: nil registration time, tier "free", and
// the configured registered-actor count.
type ActorRegistry interface {
	// RegistrationTime returns when the actor registered, or nil when
	// unknown. Actors with a nil registration time are excluded from
	// time-to-first-use means.
	RegistrationTime(ctx context.Context, userID string) (*time.Time, error)

	// Tier returns the actor's current subscription tier.
	Tier(ctx context.Context, userID string) (string, error)

	// TotalRegisteredCount returns the size of the registered population,
	// the denominator of adoption rates.
	TotalRegisteredCount(ctx context.Context) (int, error)
}

// PeriodSource supplies the structured period metrics document that BI
// report synthesis consumes.
type PeriodSource interface {
	PeriodData(ctx context.Context, start, end time.Time, granularity models.Granularity, metrics []string) (models.PeriodData, error)
}

// DefaultTier is the tier assumed when the registry cannot resolve one.
const DefaultTier = "free"
