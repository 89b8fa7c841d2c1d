package apperror

import (
	"context"
	"errors"
	"strings"
)

// Substrings the store's driver surfaces on connectivity-class failures.
// Matching on message text is crude but the driver exposes no stable
// sentinel for every one of these.
var transientMarkers = []string{
	"unavailable",
	"deadline",
	"internal",
	"cancelled",
	"canceled",
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"too many connections",
	"the database system is starting up",
}

// IsTransient reports whether err looks like a store connectivity
// failure worth retrying with backoff, as opposed to a permanent error
// (bad input, missing document, permission).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrConflict) {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
