package analyses

import (
	"errors"
	"strings"
)

// ErrNotConfigured is returned when no completion client is available,
// usually because the provider credential is missing.
var ErrNotConfigured = errors.New("completion service not configured")

const (
	ErrorCodeValidation      = "validation_error"
	ErrorCodeConfiguration   = "configuration_error"
	ErrorCodeUpstream        = "upstream_error"
	ErrorCodeUpstreamTimeout = "upstream_timeout"
	ErrorCodeUnavailable     = "analysis_unavailable"
	ErrorCodeInternal        = "internal"
)

// MissingFieldsError lists required request fields that were absent or blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ValidationError describes why a completion payload was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid analysis payload: " + e.Reason
	}
	return "invalid analysis payload: " + e.Field + ": " + e.Reason
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
