// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package metrics exposes Prometheus instrumentation for the analytics
// engine: ingestion volume and rejections, cache behavior, aggregation and
// report latency, collaborator health, and API traffic.
//
// Metrics are registered via promauto at package load and served by the
// /metrics endpoint on the API router.
package metrics
