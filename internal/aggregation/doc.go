// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package aggregation derives per-feature usage analytics (adoption,
// retention, time-to-first-use, action rankings and breakdowns) from the
// recorded event set. Aggregates are always recomputed from events; nothing
// here is stateful between calls.
package aggregation
