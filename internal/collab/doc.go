// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package collab defines the external collaborator interfaces the engine
// consumes (analytics sink, actor registry, period analytics source) and
// the resilience wrappers around them.
//
// The engine never performs blocking network I/O directly: every
// collaborator call goes through a wrapper that applies a timeout and a
// circuit breaker, and degrades to the documented default value on error,
// timeout or open breaker. Collaborator failure therefore never propagates
// into the aggregation pipeline.
//
// Static in-process implementations are provided for standalone operation
// and tests.
package collab
