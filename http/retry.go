package http

import (
	"context"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"strconv"
	"strings"
	"syscall"
)

// csrfRejectionMarker is the body fragment the server includes on a 403 when
// the presented CSRF token was rejected.
const csrfRejectionMarker = "Invalid CSRF token"

// defaultRetryCodes are always retried: rate limiting, bad gateway,
// service unavailable and request timeout.
var defaultRetryCodes = []int{
	nethttp.StatusTooManyRequests,
	nethttp.StatusBadGateway,
	nethttp.StatusServiceUnavailable,
	nethttp.StatusRequestTimeout,
}

// outcome is the classification of a single send attempt. Driving the retry
// loop off an explicit tag keeps it a plain state transition instead of
// error-driven control flow.
type outcome int

const (
	// outcomeTerminal: return the response as-is, success or not
	outcomeTerminal outcome = iota
	// outcomeRetryable: consume a retry with ordinary backoff
	outcomeRetryable
	// outcomeCsrfRejected: invalidate the cached CSRF token, then retry
	outcomeCsrfRejected
)

// classifyResponse decides what to do with a response that came back.
// Terminal responses (success or non-retryable failure) are returned to the
// caller as-is; the CSRF rejection case is distinct because it triggers a
// token refresh rather than plain backoff.
func classifyResponse(resp *Response, extraCodes []int) outcome {
	if isCsrfRejection(resp) {
		return outcomeCsrfRejected
	}
	if isRetryableStatus(resp.StatusCode, extraCodes) {
		return outcomeRetryable
	}
	return outcomeTerminal
}

func isRetryableStatus(code int, extraCodes []int) bool {
	for _, c := range defaultRetryCodes {
		if code == c {
			return true
		}
	}
	for _, c := range extraCodes {
		if code == c {
			return true
		}
	}
	return false
}

// isCsrfRejection reports whether the response is a 403 caused by an invalid
// CSRF token rather than an ordinary authorization failure.
func isCsrfRejection(resp *Response) bool {
	return resp.StatusCode == nethttp.StatusForbidden &&
		strings.Contains(string(resp.Body), csrfRejectionMarker)
}

// isRetryableError reports whether a transport error is worth retrying:
// timeouts on any axis (connect, read, write, pool acquisition), connections
// reset or closed mid-transfer, and protocol anomalies from misbehaving
// proxies. Caller cancellation is handled separately by the send loop and is
// never retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Per-attempt deadlines and net.Error timeouts cover the connect, read,
	// write and pool axes.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Connection reset surfaces as a read failure; a socket closed during a
	// write surfaces as a broken pipe.
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	// A server hanging up mid-body is reported as an unexpected EOF.
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	// The transport reports protocol anomalies only as error text: malformed
	// HTTP/1.1 responses from misbehaving proxies and HTTP/2 stream errors
	// from the bundled h2 implementation.
	msg := err.Error()
	if strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "http2:") {
		return true
	}

	return false
}

// parseRetryAfter extracts a Retry-After value in seconds, returning ok=false
// when the header is absent or unparseable.
func parseRetryAfter(resp *Response) (float64, bool) {
	if resp == nil {
		return 0, false
	}
	value := resp.Headers.Get(HeaderRetryAfter)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// isChangeRequest reports whether the method mutates server state and
// therefore needs CSRF headers. Read-only requests never trigger CSRF
// handling.
func isChangeRequest(method string) bool {
	switch method {
	case nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodPatch, nethttp.MethodDelete:
		return true
	default:
		return false
	}
}
