// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"errors"
	"fmt"
)

// ErrCollaboratorUnavailable indicates an external collaborator (analytics
// sink, actor registry, period source) was unreachable or timed out. It is
// always caught at the call site and replaced with the documented default;
// it never propagates out of the aggregation pipeline.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ErrInsufficientData indicates a forecast was requested over fewer than
// two history points. Forecast operations translate it into a
// zero-confidence flat result rather than returning it to callers.
var ErrInsufficientData = errors.New("insufficient history for forecast")

// ErrReportNotFound is returned when a report ID has no cached report.
var ErrReportNotFound = errors.New("report not found")

// ValidationError reports malformed input to Record or report generation.
// Validation failures are rejected immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
