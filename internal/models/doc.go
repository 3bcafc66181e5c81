// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package models defines the data contracts shared across the analytics
// engine: usage events, metric snapshots, derived feature aggregates,
// popularity entries, business-intelligence reports, forecast results and
// dashboard widgets.
//
// Everything here is plain structured data. Aggregates and reports are
// derived values: they are recomputed from the event set and never treated
// as a source of truth.
package models
