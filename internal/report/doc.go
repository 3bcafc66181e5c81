// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package report synthesizes business-intelligence reports from period
// analytics data: summary figures, rule-based insights, prioritized
// recommendations, trend classification and visualization specs.
//
// Generation is a staged pipeline with cancellation checks between stages.
// Given identical arguments over an unchanged data set, two generations
// produce structurally identical reports, including the report ID.
package report
