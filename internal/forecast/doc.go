// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package forecast computes short-horizon predictions: per-actor churn
// risk, usage trend extrapolation and revenue projection. All three are
// deterministic closed-form computations; insufficient history degrades to
// zero-confidence results instead of errors.
package forecast
