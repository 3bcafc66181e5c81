// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

import "time"

// UsageEvent is one observed interaction with a tracked feature.
// Events are immutable once recorded; the event store only ever drops the
// oldest entries of a full bucket or clears a cache wholesale.
type UsageEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// UserID is empty for anonymous sessions.
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id"`

	Feature  string            `json:"feature"`
	Action   string            `json:"action"`
	Metadata map[string]string `json:"metadata,omitempty"`

	Context     EventContext     `json:"context"`
	Performance EventPerformance `json:"performance"`
}

// EventContext describes where the interaction originated.
type EventContext struct {
	Page      string   `json:"page,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	Viewport  Viewport `json:"viewport"`
	Referrer  string   `json:"referrer,omitempty"`
}

// Viewport holds client viewport dimensions in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EventPerformance holds client-side timing samples in milliseconds.
// Samples are non-negative; the store clamps negatives to zero on record.
type EventPerformance struct {
	LoadTimeMs        float64 `json:"load_time_ms"`
	InteractionTimeMs float64 `json:"interaction_time_ms"`
}

// Day returns the calendar day of the event timestamp in UTC, which is the
// bucketing key component used by the event store.
func (e UsageEvent) Day() string {
	return e.Timestamp.UTC().Format("2006-01-02")
}
