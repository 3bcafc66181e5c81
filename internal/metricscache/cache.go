// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package metricscache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pulseboard/internal/cache"
	"github.com/tomtom215/pulseboard/internal/collab"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// globalBucket is the actor key used when a snapshot carries no user ID.
const globalBucket = "global"

// Config tunes the metrics cache.
type Config struct {
	// BucketCapacity bounds each (actor, day) bucket. Default 1000.
	BucketCapacity int

	// SinkRate caps analytics-sink emissions per second. Default 10.
	SinkRate float64

	// SinkBurst is the emission burst allowance. Default 20.
	SinkBurst int
}

func (c Config) withDefaults() Config {
	if c.BucketCapacity < 1 {
		c.BucketCapacity = 1000
	}
	if c.SinkRate <= 0 {
		c.SinkRate = 10
	}
	if c.SinkBurst < 1 {
		c.SinkBurst = 20
	}
	return c
}

// SnapshotInput is the caller-supplied portion of a metric snapshot. The
// cache stamps identity and timestamp on collect.
type SnapshotInput struct {
	UserID         string
	OrganizationID string
	Performance    models.PerformanceMetrics
	Business       models.BusinessMetrics
	Usage          models.UsageMetrics
	Financial      models.FinancialMetrics
	Dimensions     models.SnapshotDimensions
}

// Cache buckets metric snapshots by (actor-or-global, calendar day) in
// bounded rings and notifies the analytics sink about each collection.
type Cache struct {
	cfg     Config
	buckets *cache.RingMap[models.MetricSnapshot]
	sink    collab.AnalyticsSink
	limiter *rate.Limiter

	now func() time.Time
}

// New creates a metrics cache emitting to the given sink.
func New(cfg Config, sink collab.AnalyticsSink) *Cache {
	cfg = cfg.withDefaults()
	return &Cache{
		cfg:     cfg,
		buckets: cache.NewRingMap[models.MetricSnapshot](cfg.BucketCapacity),
		sink:    sink,
		limiter: rate.NewLimiter(rate.Limit(cfg.SinkRate), cfg.SinkBurst),
		now:     time.Now,
	}
}

// SetClock replaces the cache's clock. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// BucketKey builds the composite bucket key for an actor and day. An empty
// actor maps to the shared global bucket.
func BucketKey(userID, day string) string {
	if userID == "" {
		userID = globalBucket
	}
	return userID + "|" + day
}

// Collect stamps and stores one snapshot, then emits a throttled
// advanced_metrics_collected event. Sink failures are logged and never
// surfaced; collection itself cannot fail.
func (c *Cache) Collect(ctx context.Context, input SnapshotInput) models.MetricSnapshot {
	snapshot := models.MetricSnapshot{
		ID:             uuid.New().String(),
		Timestamp:      c.now().UTC(),
		UserID:         input.UserID,
		OrganizationID: input.OrganizationID,
		Performance:    input.Performance,
		Business:       input.Business,
		Usage:          input.Usage,
		Financial:      input.Financial,
		Dimensions:     input.Dimensions,
	}

	day := snapshot.Timestamp.Format("2006-01-02")
	c.buckets.Push(BucketKey(snapshot.UserID, day), snapshot)
	metrics.SnapshotsCollected.Inc()

	c.emit(ctx, snapshot)
	return snapshot
}

// Snapshots returns the stored snapshots for an (actor, day) bucket, most
// recent first.
func (c *Cache) Snapshots(userID, day string) []models.MetricSnapshot {
	return c.buckets.Snapshot(BucketKey(userID, day))
}

// Clear drops all buckets.
func (c *Cache) Clear() {
	c.buckets.Clear()
}

// emit notifies the analytics sink, subject to the rate limiter. Dropped or
// failed emissions are logged at debug; the snapshot is already stored.
func (c *Cache) emit(ctx context.Context, snapshot models.MetricSnapshot) {
	if !c.limiter.Allow() {
		logging.Ctx(ctx).Debug().Str("snapshot_id", snapshot.ID).Msg("Sink emission throttled")
		return
	}

	payload := map[string]interface{}{
		"user_id":    snapshot.UserID,
		"timestamp":  snapshot.Timestamp,
		"dimensions": snapshot.DimensionCount(),
	}
	if err := c.sink.TrackEvent(ctx, "advanced_metrics_collected", payload); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Sink emission failed")
	}
}
