// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package dashboard resolves widget declarations into data payloads:
// current-value metrics with deltas, labeled chart series, top-feature
// tables and threshold alerts. Resolution is stateless per call; refresh
// cadence is the caller's concern.
package dashboard
