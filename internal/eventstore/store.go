// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package eventstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pulseboard/internal/cache"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// Config tunes the event store.
type Config struct {
	// BucketCapacity bounds each (feature, day) bucket. Default 1000.
	BucketCapacity int

	// DurableCapacity bounds the global durable log. Default 1000.
	DurableCapacity int

	// IngestWindow is the sliding window over which the ingest rate is
	// tracked for alert widgets. Default 5m.
	IngestWindow time.Duration
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.BucketCapacity < 1 {
		c.BucketCapacity = 1000
	}
	if c.DurableCapacity < 1 {
		c.DurableCapacity = 1000
	}
	if c.IngestWindow <= 0 {
		c.IngestWindow = 5 * time.Minute
	}
	return c
}

// EventInput is the caller-supplied portion of a usage event. The store
// stamps identity, timestamp and derived fields on record.
type EventInput struct {
	UserID      string
	SessionID   string
	Feature     string
	Action      string
	Metadata    map[string]string
	Context     models.EventContext
	Performance models.EventPerformance
}

// QueryFilter selects events from the durable log. The zero value matches
// everything.
type QueryFilter struct {
	// Feature restricts to one feature key; empty matches all features.
	Feature string

	// Start and End bound the inclusive timestamp range when non-nil.
	Start *time.Time
	End   *time.Time
}

// Store is the append-only usage event store.
type Store struct {
	cfg     Config
	buckets *cache.RingMap[models.UsageEvent]
	durable *DurableLog
	ingest  *cache.SlidingWindowCounter

	// now is the clock, injectable for tests.
	now func() time.Time
}

// New creates a store over the given durable log.
func New(cfg Config, durable *DurableLog) *Store {
	cfg = cfg.withDefaults()
	return &Store{
		cfg:     cfg,
		buckets: cache.NewRingMap[models.UsageEvent](cfg.BucketCapacity),
		durable: durable,
		ingest:  cache.NewSlidingWindowCounter(cfg.IngestWindow, 10),
		now:     time.Now,
	}
}

// SetClock replaces the store's clock. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// BucketKey builds the composite bucket key for a feature and day.
func BucketKey(feature, day string) string {
	return feature + "|" + day
}

// Record validates, stamps and stores one usage event. Only validation can
// fail; a durable-log write failure is logged and swallowed so telemetry
// never blocks the caller's primary action.
func (s *Store) Record(ctx context.Context, input EventInput) (models.UsageEvent, error) {
	if err := validateInput(input); err != nil {
		metrics.EventsRejected.WithLabelValues(err.Field).Inc()
		return models.UsageEvent{}, err
	}

	event := models.UsageEvent{
		ID:        uuid.New().String(),
		Timestamp: s.now().UTC(),
		UserID:    input.UserID,
		SessionID: input.SessionID,
		Feature:   input.Feature,
		Action:    input.Action,
		Metadata:  input.Metadata,
		Context:   input.Context,
		Performance: models.EventPerformance{
			LoadTimeMs:        clampNonNegative(input.Performance.LoadTimeMs),
			InteractionTimeMs: clampNonNegative(input.Performance.InteractionTimeMs),
		},
	}

	key := BucketKey(event.Feature, event.Day())
	if s.buckets.Len(key) >= s.cfg.BucketCapacity {
		metrics.BucketEvictions.Inc()
	}
	s.buckets.Push(key, event)

	if err := s.durable.Append(event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("feature", event.Feature).Msg("Durable log append failed")
	}

	s.ingest.IncrementOne()
	metrics.EventsRecorded.WithLabelValues(event.Feature).Inc()
	return event, nil
}

// Query returns events from the durable log matching the filter, most
// recent first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.UsageEvent, error) {
	all, err := s.durable.Recent(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read durable log: %w", err)
	}

	matched := make([]models.UsageEvent, 0, len(all))
	for _, event := range all {
		if filter.Feature != "" && event.Feature != filter.Feature {
			continue
		}
		if filter.Start != nil && event.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && event.Timestamp.After(*filter.End) {
			continue
		}
		matched = append(matched, event)
	}

	logging.Ctx(ctx).Debug().
		Int("matched", len(matched)).
		Str("feature", filter.Feature).
		Msg("Event query complete")
	return matched, nil
}

// Bucket returns a snapshot of the in-memory bucket for (feature, day),
// most recent first, or nil when the bucket has never been written.
func (s *Store) Bucket(feature, day string) []models.UsageEvent {
	return s.buckets.Snapshot(BucketKey(feature, day))
}

// IngestRate returns the number of events recorded within the configured
// sliding window.
func (s *Store) IngestRate() int64 {
	return s.ingest.Count()
}

// ClearCaches drops all in-memory buckets and resets the ingest counter.
// The durable log is unaffected.
func (s *Store) ClearCaches() {
	s.buckets.Clear()
	s.ingest.Reset()
}

// validateInput enforces the required event fields.
func validateInput(input EventInput) *engine.ValidationError {
	switch {
	case input.Feature == "":
		return engine.NewValidationError("feature", "must not be empty")
	case input.Action == "":
		return engine.NewValidationError("action", "must not be empty")
	case input.SessionID == "":
		return engine.NewValidationError("session_id", "must not be empty")
	}
	return nil
}

// clampNonNegative coerces negative timing samples to zero.
func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
