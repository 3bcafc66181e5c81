// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package eventstore provides append-only ingestion of usage events.

Recorded events land in two structures:

  - In-memory buckets keyed by (feature, calendar day), each a bounded
    most-recent-first ring (default capacity 1000). Buckets serve hot reads
    and real-time widgets.
  - A durable bounded log backed by BadgerDB (default capacity 1000,
    global, most-recent-first) that survives process restarts and backs
    Query.

Recording is best-effort beyond validation: a missing feature, action or
session ID is rejected with a ValidationError, but a durable-log write
failure is logged and never surfaced, because telemetry must not block the
action it describes.

A FlushService runs the durable log's capacity pruning and Badger value-log
GC on a single dedicated timer; readers observe either the pre- or
post-prune state, never a partial one.
*/
package eventstore
