// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package collab

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
)

// GuardConfig tunes the resilience wrapper around one collaborator.
type GuardConfig struct {
	// Name identifies the collaborator in logs, metrics and breaker state.
	Name string

	// CallTimeout bounds each call. Default 2s.
	CallTimeout time.Duration

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker. Default 5.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	// Default 30s.
	OpenTimeout time.Duration
}

// withDefaults fills zero-valued fields.
func (c GuardConfig) withDefaults() GuardConfig {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 2 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	return c
}

// Guard applies a per-call timeout and a circuit breaker to collaborator
// calls. Callers receive the call error and substitute their documented
// default; the guard's job is bounding latency and shedding load from a
// failing collaborator.
type Guard struct {
	name    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// NewGuard creates a guard with the given configuration.
// Uses gobreaker v2 generic API with interface{} type parameter for
// flexibility across collaborator return types.
func NewGuard(cfg GuardConfig) *Guard {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("collaborator", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Collaborator breaker state changed")
		},
	}

	return &Guard{
		name:    cfg.Name,
		timeout: cfg.CallTimeout,
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// State returns the breaker state as a string for monitoring.
func (g *Guard) State() string {
	return g.breaker.State().String()
}

// Do executes fn under the timeout and breaker. The returned error is nil
// only when fn succeeded within the timeout with a closed or probing
// breaker.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return fn(callCtx)
	})

	switch {
	case err == nil:
		metrics.CollaboratorCalls.WithLabelValues(g.name, "ok").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CollaboratorCalls.WithLabelValues(g.name, "open").Inc()
	case errors.Is(err, context.DeadlineExceeded):
		metrics.CollaboratorCalls.WithLabelValues(g.name, "timeout").Inc()
	default:
		metrics.CollaboratorCalls.WithLabelValues(g.name, "error").Inc()
	}

	return result, err
}
