// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	got, ok := c.Get("key")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if got.(string) != "value" {
		t.Errorf("Expected %q, got %q", "value", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Error("Expected cache miss for absent key")
	}

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(time.Minute)

	c.SetWithTTL("short", 42, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", 1)
	c.Set("key", 2)

	got, ok := c.Get("key")
	if !ok || got.(int) != 2 {
		t.Errorf("Expected overwritten value 2, got %v (hit=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected deleted key to miss")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after clear, got %d entries", c.Len())
	}
}

func TestCache_StatsHitRate(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "v")
	c.Get("key")
	c.Get("key")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.TotalKeys != 1 {
		t.Errorf("Expected 1 key, got %d", stats.TotalKeys)
	}
}
