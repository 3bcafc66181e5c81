// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package collab

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/pulseboard/internal/models"
)

// NopSink discards tracking events. Used in standalone mode when no
// downstream analytics platform is configured.
type NopSink struct{}

// TrackEvent discards the event.
func (NopSink) TrackEvent(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

// StaticRegistry is an in-process ActorRegistry backed by maps. It serves
// standalone deployments and tests; production deployments inject a client
// for the real user-management service.
type StaticRegistry struct {
	mu            sync.RWMutex
	registrations map[string]time.Time
	tiers         map[string]string
	total         int
}

// NewStaticRegistry creates a registry reporting the given population size.
func NewStaticRegistry(total int) *StaticRegistry {
	if total < 1 {
		total = 1
	}
	return &StaticRegistry{
		registrations: make(map[string]time.Time),
		tiers:         make(map[string]string),
		total:         total,
	}
}

// SetRegistration records an actor's registration time.
func (r *StaticRegistry) SetRegistration(userID string, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[userID] = ts
}

// SetTier records an actor's subscription tier.
func (r *StaticRegistry) SetTier(userID, tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[userID] = tier
}

// RegistrationTime implements ActorRegistry.
func (r *StaticRegistry) RegistrationTime(_ context.Context, userID string) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ts, ok := r.registrations[userID]; ok {
		return &ts, nil
	}
	return nil, nil
}

// Tier implements ActorRegistry.
func (r *StaticRegistry) Tier(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tier, ok := r.tiers[userID]; ok {
		return tier, nil
	}
	return DefaultTier, nil
}

// TotalRegisteredCount implements ActorRegistry.
func (r *StaticRegistry) TotalRegisteredCount(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total, nil
}

// StaticPeriodSource returns a fixed period document regardless of the
// requested range. Standalone deployments use the zero document; tests set
// Data to exercise report synthesis.
type StaticPeriodSource struct {
	mu   sync.RWMutex
	data *models.PeriodData
}

// NewStaticPeriodSource creates a source returning the zero document.
func NewStaticPeriodSource() *StaticPeriodSource {
	return &StaticPeriodSource{}
}

// SetData pins the document returned by PeriodData.
func (s *StaticPeriodSource) SetData(data models.PeriodData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &data
}

// PeriodData implements PeriodSource.
func (s *StaticPeriodSource) PeriodData(_ context.Context, start, end time.Time, granularity models.Granularity, _ []string) (models.PeriodData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data != nil {
		return *s.data, nil
	}
	return models.ZeroPeriodData(start, end, granularity), nil
}
