// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package cache

import "sync"

// Ring is a fixed-capacity buffer that keeps the most recent entries in
// most-recent-first order. When the ring is full, pushing a new entry drops
// the oldest one.
//
// Complexity:
//   - Push: O(1)
//   - Snapshot: O(n) copy of current contents
//   - Memory: O(capacity)
type Ring[T any] struct {
	mu       sync.Mutex
	entries  []T
	capacity int
	head     int // index of the most recent entry
	size     int
}

// NewRing creates a ring with the given capacity. Capacities below 1 are
// coerced to 1 so a ring can always hold at least the latest entry.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		entries:  make([]T, capacity),
		capacity: capacity,
		head:     -1,
	}
}

// Push inserts an entry as the most recent. If the ring is at capacity the
// oldest entry is overwritten.
func (r *Ring[T]) Push(entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.head = (r.head + 1) % r.capacity
	r.entries[r.head] = entry
	if r.size < r.capacity {
		r.size++
	}
}

// Len returns the number of entries currently held.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the maximum number of entries the ring can hold.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// Snapshot returns a copy of the current contents in most-recent-first
// order. The returned slice is owned by the caller; later pushes do not
// affect it.
func (r *Ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		// Walk backwards from head, wrapping at zero.
		idx := (r.head - i + r.capacity) % r.capacity
		out[i] = r.entries[idx]
	}
	return out
}

// Clear removes all entries.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.entries {
		r.entries[i] = zero
	}
	r.head = -1
	r.size = 0
}

// RingMap manages a set of rings keyed by string, creating rings on demand.
// All rings share the same capacity. Writers to the same key are serialized
// by the ring's own mutex; the map itself is guarded separately so lookups
// for distinct keys do not contend.
type RingMap[T any] struct {
	mu       sync.RWMutex
	rings    map[string]*Ring[T]
	capacity int
}

// NewRingMap creates an empty ring map whose rings hold up to capacity
// entries each.
func NewRingMap[T any](capacity int) *RingMap[T] {
	return &RingMap[T]{
		rings:    make(map[string]*Ring[T]),
		capacity: capacity,
	}
}

// Push inserts an entry into the ring for key, creating the ring if needed.
func (m *RingMap[T]) Push(key string, entry T) {
	m.ring(key).Push(entry)
}

// Snapshot returns a copy of the ring contents for key, or nil when the key
// has never been written.
func (m *RingMap[T]) Snapshot(key string) []T {
	m.mu.RLock()
	r, ok := m.rings[key]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.Snapshot()
}

// Keys returns all bucket keys currently present.
func (m *RingMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.rings))
	for k := range m.rings {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries held under key.
func (m *RingMap[T]) Len(key string) int {
	m.mu.RLock()
	r, ok := m.rings[key]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return r.Len()
}

// Clear removes all rings and their contents.
func (m *RingMap[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rings = make(map[string]*Ring[T])
}

// ring returns the ring for key, creating it if missing.
func (m *RingMap[T]) ring(key string) *Ring[T] {
	m.mu.RLock()
	r, ok := m.rings[key]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok = m.rings[key]; ok {
		return r
	}
	r = NewRing[T](m.capacity)
	m.rings[key] = r
	return r
}
