// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package aggregation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/tomtom215/pulseboard/internal/collab"
	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// EventSource supplies the filtered event set aggregates are computed over.
type EventSource interface {
	Query(ctx context.Context, filter eventstore.QueryFilter) ([]models.UsageEvent, error)
}

// Config tunes the aggregation engine.
type Config struct {
	// DefaultRegisteredTotal is the adoption-rate denominator used when the
	// actor registry cannot supply one. Default 1.
	DefaultRegisteredTotal int
}

func (c Config) withDefaults() Config {
	if c.DefaultRegisteredTotal < 1 {
		c.DefaultRegisteredTotal = 1
	}
	return c
}

// Filter restricts the aggregated event set. The zero value aggregates
// everything.
type Filter struct {
	Feature string
	Start   *time.Time
	End     *time.Time
}

// Engine computes per-feature usage analytics.
type Engine struct {
	cfg      Config
	source   EventSource
	registry collab.ActorRegistry
}

// New creates an aggregation engine over the given event source. Registry
// lookups are expected to come pre-wrapped with timeout and breaker
// protection; this engine treats every lookup failure as "use the default".
func New(cfg Config, source EventSource, registry collab.ActorRegistry) *Engine {
	return &Engine{cfg: cfg.withDefaults(), source: source, registry: registry}
}

// featureGroup accumulates one feature's events during the grouping pass.
type featureGroup struct {
	events []models.UsageEvent
}

// Aggregate computes one FeatureUsageAnalytics per distinct feature in the
// filtered event set, sorted descending by total usage. Features with no
// events in range yield no entry at all.
func (e *Engine) Aggregate(ctx context.Context, filter Filter) ([]models.FeatureUsageAnalytics, error) {
	start := time.Now()
	defer metrics.ObserveAggregation(start)

	events, err := e.source.Query(ctx, eventstore.QueryFilter{
		Feature: filter.Feature,
		Start:   filter.Start,
		End:     filter.End,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for aggregation: %w", err)
	}

	groups := make(map[string]*featureGroup)
	for _, event := range events {
		group, ok := groups[event.Feature]
		if !ok {
			group = &featureGroup{}
			groups[event.Feature] = group
		}
		group.events = append(group.events, event)
	}

	registeredTotal := e.registeredTotal(ctx)
	tiers := make(map[string]string)
	registrations := make(map[string]*time.Time)

	results := make([]models.FeatureUsageAnalytics, 0, len(groups))
	for feature, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.analyze(ctx, feature, group.events, registeredTotal, tiers, registrations))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalUsage != results[j].TotalUsage {
			return results[i].TotalUsage > results[j].TotalUsage
		}
		return results[i].Feature < results[j].Feature
	})

	logging.Ctx(ctx).Debug().
		Int("features", len(results)).
		Int("events", len(events)).
		Msg("Aggregation complete")
	return results, nil
}

// analyze reduces one feature's events to its analytics entry. The tier and
// registration maps memoize registry lookups across features within one
// Aggregate call.
func (e *Engine) analyze(ctx context.Context, feature string, events []models.UsageEvent,
	registeredTotal int, tiers map[string]string, registrations map[string]*time.Time) models.FeatureUsageAnalytics {

	total := len(events)

	actorDays := make(map[string]map[string]struct{})
	firstUse := make(map[string]time.Time)
	actionCounts := make(map[string]int)
	byTier := make(map[string]int)
	byHour := make(map[string]int)
	byWeekday := make(map[string]int)

	for _, event := range events {
		actionCounts[event.Action]++
		byHour[strconv.Itoa(event.Timestamp.Hour())]++
		byWeekday[event.Timestamp.Weekday().String()]++
		byTier[e.tier(ctx, event.UserID, tiers)]++

		if event.UserID == "" {
			continue
		}
		days, ok := actorDays[event.UserID]
		if !ok {
			days = make(map[string]struct{})
			actorDays[event.UserID] = days
		}
		days[event.Day()] = struct{}{}

		if first, ok := firstUse[event.UserID]; !ok || event.Timestamp.Before(first) {
			firstUse[event.UserID] = event.Timestamp
		}
	}

	unique := len(actorDays)

	avgPerUser := 0.0
	if unique > 0 {
		avgPerUser = round2(float64(total) / float64(unique))
	}

	retained := 0
	for _, days := range actorDays {
		if len(days) >= 2 {
			retained++
		}
	}
	retention := 0.0
	if unique > 0 {
		retention = round2(float64(retained) / float64(unique) * 100)
	}

	adoption := round2(float64(unique) / float64(registeredTotal) * 100)
	if adoption > 100 {
		adoption = 100
	}

	return models.FeatureUsageAnalytics{
		Feature:            feature,
		TotalUsage:         total,
		UniqueUsers:        unique,
		AvgEventsPerUser:   avgPerUser,
		RetentionRate:      retention,
		AdoptionRate:       adoption,
		TimeToFirstUseDays: e.timeToFirstUse(ctx, firstUse, registrations),
		MostCommonActions:  rankActions(actionCounts, total),
		UsageByTier:        byTier,
		UsageByHourOfDay:   byHour,
		UsageByDayOfWeek:   byWeekday,
	}
}

// timeToFirstUse returns the mean days between registration and first use,
// over actors whose registration time is known. Actors the registry cannot
// resolve are excluded from the mean rather than counted as zero.
func (e *Engine) timeToFirstUse(ctx context.Context, firstUse map[string]time.Time,
	registrations map[string]*time.Time) float64 {

	sum := 0.0
	counted := 0
	for userID, first := range firstUse {
		registered, ok := registrations[userID]
		if !ok {
			registered = e.registration(ctx, userID)
			registrations[userID] = registered
		}
		if registered == nil {
			continue
		}
		days := first.Sub(*registered).Hours() / 24
		if days < 0 {
			days = 0
		}
		sum += days
		counted++
	}
	if counted == 0 {
		return 0
	}
	return round2(sum / float64(counted))
}

// rankActions tallies actions into a descending ranked list with 2-decimal
// percentages of total usage.
func rankActions(counts map[string]int, total int) []models.ActionCount {
	ranked := make([]models.ActionCount, 0, len(counts))
	for action, count := range counts {
		pct := 0.0
		if total > 0 {
			pct = round2(float64(count) / float64(total) * 100)
		}
		ranked = append(ranked, models.ActionCount{Action: action, Count: count, Percentage: pct})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Action < ranked[j].Action
	})
	return ranked
}

// registeredTotal resolves the adoption denominator, falling back to the
// configured default when the registry is unavailable or returns nonsense.
func (e *Engine) registeredTotal(ctx context.Context) int {
	total, err := e.registry.TotalRegisteredCount(ctx)
	if err != nil || total < 1 {
		return e.cfg.DefaultRegisteredTotal
	}
	return total
}

// tier resolves an actor's subscription tier with per-call memoization.
func (e *Engine) tier(ctx context.Context, userID string, memo map[string]string) string {
	if userID == "" {
		return collab.DefaultTier
	}
	if tier, ok := memo[userID]; ok {
		return tier
	}
	tier, err := e.registry.Tier(ctx, userID)
	if err != nil || tier == "" {
		tier = collab.DefaultTier
	}
	memo[userID] = tier
	return tier
}

// registration resolves an actor's registration time, nil when unknown.
func (e *Engine) registration(ctx context.Context, userID string) *time.Time {
	registered, err := e.registry.RegistrationTime(ctx, userID)
	if err != nil {
		return nil
	}
	return registered
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
