package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTimeout marks a fetch that produced no response within the client's deadline.
var ErrTimeout = errors.New("request timed out")

// StatusError reports a response carrying a non-2xx HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// classify maps a transport-level failure onto the fetch error taxonomy:
// timeouts become ErrTimeout, everything else is a wrapped request failure.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("request failed: %w", err)
}

// shouldFailover reports whether a direct-attempt failure warrants the single
// mirror retry. Timeouts and transport failures always do. Status codes fail
// over only when they look like anti-scraping defenses or transient server
// failure; anything else (notably 404) is authoritative and returned as-is.
func shouldFailover(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return failoverStatus(status.Code)
	}
	return true
}

func failoverStatus(code int) bool {
	switch {
	case code == http.StatusForbidden:
		return true
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 599:
		return true
	default:
		return false
	}
}
