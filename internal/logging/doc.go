// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package logging provides centralized zerolog-based logging for Pulseboard.
//
// All components log through this package so that output format, level and
// context propagation stay consistent across the engine:
//
//   - Zero-allocation structured logging
//   - JSON output for production, console output for development
//   - Context-aware logging with correlation ID propagation
//   - Configuration via environment variables or config file
//
// # Quick Start
//
//	import "github.com/tomtom215/pulseboard/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages
//	logging.Info().Msg("Engine starting")
//	logging.Error().Err(err).Msg("Report generation failed")
//
//	// With context (correlation ID)
//	logging.Ctx(ctx).Info().Str("feature", f).Msg("Aggregation complete")
//
// Always terminate log chains with .Msg() or .Send(); a chain without a
// terminator is never emitted.
package logging
