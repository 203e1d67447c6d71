package http

import (
	"context"
	nethttp "net/http"
	"time"
)

// Header names consumed or produced by the transport.
const (
	// HeaderRetryAfter is the server's requested minimum delay before a retry
	HeaderRetryAfter = "Retry-After"
	// HeaderCsrfToken carries the CSRF token on mutating requests
	HeaderCsrfToken = "Prefect-Csrf-Token"
	// HeaderCsrfClient carries the stable per-client identifier
	HeaderCsrfClient = "Prefect-Csrf-Client"
	// HeaderRequestID is the standard header name for request tracing
	HeaderRequestID = "X-Request-ID"
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an HTTP request with all necessary data.
// Path is resolved against the client's base URL unless it is already an
// absolute URL. The Headers map is owned by the caller until the request is
// handed to the client, which may inject CSRF headers before sending.
type Request struct {
	Path    string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response with tracking information
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	URL        string
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	Attempts    int
}

// RetryPolicy controls the retry behavior of the client.
// It is immutable after client construction.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int
	// ExtraRetryCodes are retried in addition to 408, 429, 502 and 503
	ExtraRetryCodes []int
	// JitterFactor spreads backoff delays; must be in [0.0, 1.0]
	JitterFactor float64
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the REST client configuration
type Config struct {
	// BaseURL is the fixed API root all request paths are resolved against
	BaseURL string
	// AuthToken is sent as a bearer Authorization header when non-empty
	AuthToken string
	// DefaultHeaders are applied to every request before per-request headers
	DefaultHeaders map[string]string

	// Connection pool sizing. The keep-alive expiry should stay below the
	// server side idle timeout so the client recycles connections first.
	MaxConnections          int
	MaxKeepaliveConnections int
	KeepaliveExpiry         time.Duration

	// Per-axis timeouts. ConnectTimeout bounds dial, ReadTimeout bounds the
	// wait for response headers, RequestTimeout bounds one whole attempt
	// (covering write and pool acquisition).
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	RequestTimeout time.Duration

	Retry RetryPolicy

	// EnableCSRF turns on CSRF token management for mutating requests
	EnableCSRF bool
	// RaiseOnError converts failed responses into enriched ClientErrors
	RaiseOnError bool

	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
}
