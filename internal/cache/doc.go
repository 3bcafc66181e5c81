// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package cache provides the bounded in-memory data structures backing the
analytics engine.

# Overview

Three structures are implemented, all safe for concurrent use:

  - Ring: a fixed-capacity most-recent-first buffer. Event Store and
    Metrics Cache buckets are Rings keyed by (feature, day) or (actor, day);
    the oldest entry is dropped when a full ring receives a new one.
  - Cache: a TTL key-value cache with lazy expiration, used for generated
    BI reports and aggregation results.
  - SlidingWindowCounter: a bucketed counter over a rolling time window,
    used for ingest-rate tracking behind alert widgets.

# Design

Rings hand out copy-on-write snapshots: writers mutate under a per-ring
mutex while readers receive a copied slice, so a reader observes either the
pre- or post-write state and never a partially updated bucket.

The package depends only on the standard library.
*/
package cache
