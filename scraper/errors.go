package scraper

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// classifyError labels a transport failure for logging and metrics. The
// label never changes control flow: any failed fetch ends pagination, with
// no retry.
func classifyError(err error, statusCode int) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection"
	}

	switch statusCode {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}

	return "other"
}
