// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package cache

import (
	"testing"
	"time"
)

func TestSlidingWindowCounter_BasicOperations(t *testing.T) {
	sw := NewSlidingWindowCounter(time.Second, 10)

	if sw.Count() != 0 {
		t.Errorf("Expected initial count 0, got %d", sw.Count())
	}

	sw.IncrementOne()
	sw.IncrementOne()
	sw.Increment(3)

	if sw.Count() != 5 {
		t.Errorf("Expected count 5, got %d", sw.Count())
	}
}

func TestSlidingWindowCounter_WindowExpiration(t *testing.T) {
	sw := NewSlidingWindowCounter(100*time.Millisecond, 10)

	sw.Increment(10)
	if sw.Count() != 10 {
		t.Errorf("Expected count 10, got %d", sw.Count())
	}

	time.Sleep(150 * time.Millisecond)

	if sw.Count() != 0 {
		t.Errorf("Expected count 0 after expiration, got %d", sw.Count())
	}
}

func TestSlidingWindowCounter_Reset(t *testing.T) {
	sw := NewSlidingWindowCounter(time.Second, 10)

	sw.Increment(7)
	sw.Reset()

	if sw.Count() != 0 {
		t.Errorf("Expected count 0 after reset, got %d", sw.Count())
	}
}

func TestSlidingWindowCounter_Defaults(t *testing.T) {
	sw := NewSlidingWindowCounter(0, 0)

	if sw.numBuckets != 10 {
		t.Errorf("Expected default 10 buckets, got %d", sw.numBuckets)
	}
	if sw.windowSize != 5*time.Minute {
		t.Errorf("Expected default 5m window, got %v", sw.windowSize)
	}
}
