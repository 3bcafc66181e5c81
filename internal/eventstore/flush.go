// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package eventstore

import (
	"context"
	"time"

	"github.com/tomtom215/pulseboard/internal/logging"
)

// FlushService runs durable-log maintenance (capacity pruning and Badger
// value-log GC) on a single dedicated timer. It implements suture.Service
// and is supervised alongside the HTTP server.
//
// Pruning operates on the durable log only; in-memory buckets are bounded
// structurally by their rings, so readers never observe a half-maintained
// state.
type FlushService struct {
	durable  *DurableLog
	interval time.Duration
}

// NewFlushService creates the maintenance service. Intervals below one
// second are coerced to the 1m default.
func NewFlushService(durable *DurableLog, interval time.Duration) *FlushService {
	if interval < time.Second {
		interval = time.Minute
	}
	return &FlushService{durable: durable, interval: interval}
}

// Serve runs the maintenance loop until ctx is canceled.
func (f *FlushService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", f.interval).Msg("Durable log maintenance started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.runOnce()
		}
	}
}

// runOnce performs one maintenance pass.
func (f *FlushService) runOnce() {
	pruned, err := f.durable.Prune()
	if err != nil {
		logging.Warn().Err(err).Msg("Durable log prune failed")
	} else if pruned > 0 {
		logging.Debug().Int("pruned", pruned).Msg("Durable log pruned")
	}

	if err := f.durable.RunGC(); err != nil {
		logging.Warn().Err(err).Msg("Durable log GC failed")
	}
}

// String names the service in supervisor logs.
func (f *FlushService) String() string {
	return "eventstore-flush"
}
