// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package api exposes the engine over HTTP using the Chi router.
//
// The Server struct is the composition point for the whole engine: it owns
// the stores and analytics components and serves their read-only accessors.
// All responses use a uniform envelope with machine-readable error codes
// and a request ID for tracing.
package api
