// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/pulseboard/internal/engine"
)

// newTestStore opens a store over an in-memory durable log.
func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()

	durable, err := OpenDurableLog("", cfg.DurableCapacity)
	if err != nil {
		t.Fatalf("Failed to open in-memory durable log: %v", err)
	}
	t.Cleanup(func() {
		if err := durable.Close(); err != nil {
			t.Errorf("Failed to close durable log: %v", err)
		}
	})

	return New(cfg, durable)
}

func validInput() EventInput {
	return EventInput{
		UserID:    "u1",
		SessionID: "sess-1",
		Feature:   "upload",
		Action:    "start",
	}
}

func TestRecord_StampsIdentity(t *testing.T) {
	s := newTestStore(t, Config{})

	event, err := s.Record(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if event.ID == "" {
		t.Error("Expected non-empty event ID")
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected stamped timestamp")
	}
	if event.Feature != "upload" || event.Action != "start" {
		t.Errorf("Expected feature/action preserved, got %s/%s", event.Feature, event.Action)
	}
}

func TestRecord_ValidationFailures(t *testing.T) {
	s := newTestStore(t, Config{})

	tests := []struct {
		name  string
		mut   func(*EventInput)
		field string
	}{
		{"missing feature", func(in *EventInput) { in.Feature = "" }, "feature"},
		{"missing action", func(in *EventInput) { in.Action = "" }, "action"},
		{"missing session", func(in *EventInput) { in.SessionID = "" }, "session_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mut(&input)

			_, err := s.Record(context.Background(), input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !engine.IsValidation(err) {
				t.Errorf("Expected ValidationError, got %T", err)
			}
		})
	}
}

func TestRecord_ClampsNegativePerformance(t *testing.T) {
	s := newTestStore(t, Config{})

	input := validInput()
	input.Performance.LoadTimeMs = -5
	input.Performance.InteractionTimeMs = -1

	event, err := s.Record(context.Background(), input)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if event.Performance.LoadTimeMs != 0 || event.Performance.InteractionTimeMs != 0 {
		t.Errorf("Expected negative samples clamped to 0, got %+v", event.Performance)
	}
}

func TestRecord_BucketCapacityBound(t *testing.T) {
	s := newTestStore(t, Config{BucketCapacity: 1000, DurableCapacity: 2000})
	s.SetClock(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	for i := 0; i < 1500; i++ {
		if _, err := s.Record(context.Background(), validInput()); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	bucket := s.Bucket("upload", "2026-03-14")
	if len(bucket) != 1000 {
		t.Errorf("Expected exactly 1000 events in full bucket, got %d", len(bucket))
	}
}

func TestQuery_FeatureFilter(t *testing.T) {
	s := newTestStore(t, Config{})
	ctx := context.Background()

	for _, feature := range []string{"upload", "upload", "export"} {
		input := validInput()
		input.Feature = feature
		if _, err := s.Record(ctx, input); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	events, err := s.Query(ctx, QueryFilter{Feature: "upload"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 upload events, got %d", len(events))
	}

	all, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 events with no filter, got %d", len(all))
	}
}

func TestQuery_TimeRange(t *testing.T) {
	s := newTestStore(t, Config{})
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{day1, day2, day3} {
		ts := ts
		s.SetClock(func() time.Time { return ts })
		if _, err := s.Record(ctx, validInput()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// Inclusive range covering day2 only.
	start := day2.Add(-time.Hour)
	end := day2.Add(time.Hour)
	events, err := s.Query(ctx, QueryFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event in range, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(day2) {
		t.Errorf("Expected day2 event, got %v", events[0].Timestamp)
	}

	// Boundaries are inclusive.
	events, err = s.Query(ctx, QueryFilter{Start: &day1, End: &day3})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("Expected 3 events in inclusive range, got %d", len(events))
	}
}

func TestQuery_MostRecentFirst(t *testing.T) {
	s := newTestStore(t, Config{})
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		s.SetClock(func() time.Time { return ts })
		if _, err := s.Record(ctx, validInput()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	events, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("Expected most-recent-first ordering, got %v before %v",
				events[i-1].Timestamp, events[i].Timestamp)
		}
	}
}

func TestClearCaches_PreservesDurableLog(t *testing.T) {
	s := newTestStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Record(ctx, validInput()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	s.ClearCaches()

	if got := s.IngestRate(); got != 0 {
		t.Errorf("Expected ingest rate reset, got %d", got)
	}

	events, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected durable log to survive cache clear, got %d events", len(events))
	}
}

func TestIngestRate(t *testing.T) {
	s := newTestStore(t, Config{})

	for i := 0; i < 5; i++ {
		if _, err := s.Record(context.Background(), validInput()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	if got := s.IngestRate(); got != 5 {
		t.Errorf("Expected ingest rate 5, got %d", got)
	}
}
