// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package metricscache stores advanced metric snapshots in bounded
// per-actor ring buckets and emits a throttled tracking event to the
// analytics sink on each collection.
package metricscache
