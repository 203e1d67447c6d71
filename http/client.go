package http

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/prefect-community/prefect-cloud-go/logger"
)

const (
	// DefaultRequestTimeout bounds a single attempt end to end
	DefaultRequestTimeout = 60 * time.Second

	// DefaultConnectTimeout bounds connection establishment
	DefaultConnectTimeout = 60 * time.Second

	// DefaultReadTimeout bounds the wait for response headers
	DefaultReadTimeout = 60 * time.Second

	// DefaultMaxRetries is the default retry ceiling after the initial attempt
	DefaultMaxRetries = 5

	// DefaultJitterFactor is the default backoff jitter spread
	DefaultJitterFactor = 0.2

	// DefaultMaxConnections limits concurrent connections; opening many at
	// once against the API has shown instability, so concurrency is capped.
	DefaultMaxConnections = 16

	// DefaultMaxKeepaliveConnections limits pooled idle connections
	DefaultMaxKeepaliveConnections = 8

	// DefaultKeepaliveExpiry recycles idle connections before the Cloud load
	// balancer does (it holds them for 30s).
	DefaultKeepaliveExpiry = 25 * time.Second
)

// client implements the Client interface
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	csrf       *csrfManager
	rnd        *lockedRand
}

// NewClient creates a new REST client for the given API root with default
// configuration.
func NewClient(baseURL string, log logger.Logger) Client {
	return NewBuilder(log).WithBaseURL(baseURL).Build()
}

// Builder provides a fluent interface for configuring the REST client
type Builder struct {
	config  *Config
	logger  logger.Logger
	randSrc rand.Source
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			MaxConnections:          DefaultMaxConnections,
			MaxKeepaliveConnections: DefaultMaxKeepaliveConnections,
			KeepaliveExpiry:         DefaultKeepaliveExpiry,
			ConnectTimeout:          DefaultConnectTimeout,
			ReadTimeout:             DefaultReadTimeout,
			RequestTimeout:          DefaultRequestTimeout,
			Retry: RetryPolicy{
				MaxRetries:   DefaultMaxRetries,
				JitterFactor: DefaultJitterFactor,
			},
			DefaultHeaders: make(map[string]string),
		},
		logger: log,
	}
}

// WithBaseURL sets the fixed API root all request paths resolve against
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithAuthToken sets the bearer token attached to every request
func (b *Builder) WithAuthToken(token string) *Builder {
	b.config.AuthToken = token
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRetryPolicy sets the retry configuration
func (b *Builder) WithRetryPolicy(policy RetryPolicy) *Builder {
	b.config.Retry = policy
	return b
}

// WithPoolLimits sets the connection pool sizing
func (b *Builder) WithPoolLimits(maxConns, maxKeepalive int, keepaliveExpiry time.Duration) *Builder {
	b.config.MaxConnections = maxConns
	b.config.MaxKeepaliveConnections = maxKeepalive
	b.config.KeepaliveExpiry = keepaliveExpiry
	return b
}

// WithTimeouts sets the per-axis timeouts
func (b *Builder) WithTimeouts(connect, read, request time.Duration) *Builder {
	b.config.ConnectTimeout = connect
	b.config.ReadTimeout = read
	b.config.RequestTimeout = request
	return b
}

// WithCSRF enables CSRF token management for mutating requests
func (b *Builder) WithCSRF(enabled bool) *Builder {
	b.config.EnableCSRF = enabled
	return b
}

// WithRaiseOnError converts failed responses into enriched ClientErrors
func (b *Builder) WithRaiseOnError(enabled bool) *Builder {
	b.config.RaiseOnError = enabled
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithRandSource sets the pseudo-random source used for backoff jitter.
// A seeded source makes computed delays reproducible.
func (b *Builder) WithRandSource(src rand.Source) *Builder {
	b.randSrc = src
	return b
}

// Build creates the REST client with the configured options
func (b *Builder) Build() Client {
	cfg := b.config

	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	// The API is served over HTTP/1.1; ForceAttemptHTTP2 stays off.
	transport := &nethttp.Transport{
		DialContext:           dialer.DialContext,
		MaxConnsPerHost:       cfg.MaxConnections,
		MaxIdleConns:          cfg.MaxKeepaliveConnections,
		MaxIdleConnsPerHost:   cfg.MaxKeepaliveConnections,
		IdleConnTimeout:       cfg.KeepaliveExpiry,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
	}

	return &client{
		httpClient: &nethttp.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		logger: b.logger,
		config: cfg,
		csrf:   newCsrfManager(cfg.EnableCSRF),
		rnd:    newLockedRand(b.randSrc),
	}
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs an HTTP request with the specified method. Retryable failures
// are recovered internally; the caller sees either the final response or, in
// raise-on-error mode, an enriched HTTP error for failed responses.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	resp, err := c.do(ctx, method, req)
	if err != nil {
		return resp, err
	}

	if c.config.RaiseOnError {
		if err := RaiseForStatus(resp); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// do runs the retry loop and returns the final response verbatim, without
// raise-on-error semantics. The loop is driven by explicit outcome
// classification: each attempt either terminates (response returned or fatal
// error surfaced), consumes a retry with backoff, or triggers a CSRF token
// refresh before the next attempt.
func (c *client) do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	maxRetries := c.config.Retry.MaxRetries
	jitter := c.config.Retry.JitterFactor

	c.logRequest(method, req)

	for tryCount := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		httpReq, err := c.buildRequest(ctx, method, req)
		if err != nil {
			return nil, err
		}

		resp, sendErr := c.send(ctx, httpReq)
		tryCount++

		var cause error
		retryAfter, haveRetryAfter := 0.0, false

		if sendErr != nil {
			// Caller cancellation is not a transport failure; abandon the
			// loop without further attempts.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Fatal and exhausted transport errors surface as the original
			// error so callers can inspect the real cause.
			if !isRetryableError(sendErr) || tryCount > maxRetries {
				return nil, sendErr
			}
			cause = sendErr
		} else {
			switch classifyResponse(resp, c.config.Retry.ExtraRetryCodes) {
			case outcomeTerminal:
				return c.finishResponse(resp, start, tryCount), nil
			case outcomeCsrfRejected:
				if tryCount > maxRetries {
					return c.finishResponse(resp, start, tryCount), nil
				}
				// The server rejected the cached token; clear it so the next
				// attempt fetches a fresh one instead of resending it.
				c.csrf.Invalidate()
			case outcomeRetryable:
				if tryCount > maxRetries {
					return c.finishResponse(resp, start, tryCount), nil
				}
			}
			retryAfter, haveRetryAfter = parseRetryAfter(resp)
		}

		var delay time.Duration
		if haveRetryAfter {
			delay = retryAfterDelay(retryAfter, jitter, c.rnd.Float64)
		} else {
			delay = exponentialDelay(tryCount, jitter, c.rnd.Float64)
		}

		c.logRetry(method, req, resp, cause, delay, tryCount, maxRetries)

		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// send executes one attempt: response interceptors run, the body is fully
// read, and the connection is released back to the pool. A body read failure
// is reported as a transport error so the attempt can be classified for
// retry.
func (c *client) send(ctx context.Context, httpReq *nethttp.Request) (*Response, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		URL:        httpReq.URL.String(),
	}, nil
}

// buildRequest constructs an *http.Request, applies headers/auth/CSRF, and
// runs request interceptors. It is rebuilt on every attempt so bodies are
// re-sent from the start.
func (c *client) buildRequest(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, c.resolveURL(req.Path), body)
	if err != nil {
		return nil, NewValidationError(err.Error(), "path")
	}

	c.applyHeaders(httpReq, req)

	if isChangeRequest(method) && c.config.EnableCSRF {
		if err := c.csrf.Attach(ctx, httpReq.Header, c.fetchCsrfToken); err != nil {
			return nil, err
		}
	}

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		return nil, NewInterceptorError("request interceptor failed", "request", err)
	}
	return httpReq, nil
}

// fetchCsrfToken issues the token request through the full retrying pipeline.
// The fetch is a GET, so it never triggers CSRF handling itself, and it skips
// raise-on-error so the manager can inspect the raw status.
func (c *client) fetchCsrfToken(ctx context.Context) (*Response, error) {
	return c.do(ctx, nethttp.MethodGet, &Request{Path: c.csrf.tokenPath()})
}

// resolveURL joins a request path to the configured base URL. Absolute URLs
// pass through untouched.
func (c *client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.Path == "" && c.config.BaseURL == "" {
		return NewValidationError("request path cannot be empty", "path")
	}
	return nil
}

// applyHeaders applies default headers, per-request headers and auth to the
// HTTP request.
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	// Request-specific headers override defaults
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.config.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
}

// finishResponse stamps execution stats on the final response and logs it.
func (c *client) finishResponse(resp *Response, start time.Time, attempts int) *Response {
	resp.Stats = Stats{
		ElapsedTime: time.Since(start),
		Attempts:    attempts,
	}
	c.logResponse(resp)
	return resp
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.config.RequestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.config.ResponseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}

// sleepContext waits for the backoff delay while honoring cancellation; a
// cancellation mid-sleep abandons the retry loop.
func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// logRequest logs the outgoing request
func (c *client) logRequest(method string, req *Request) {
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", c.resolveURL(req.Path)).
		Msg("API client request")
}

// logRetry logs one recovered attempt before sleeping
func (c *client) logRetry(method string, req *Request, resp *Response, cause error, delay time.Duration, tryCount, maxRetries int) {
	logEvent := c.logger.Debug().
		Str("method", method).
		Str("url", c.resolveURL(req.Path)).
		Int("attempt", tryCount).
		Int("max_attempts", maxRetries+1).
		Dur("delay", delay)

	if cause != nil {
		logEvent = logEvent.Err(cause)
	} else if resp != nil {
		logEvent = logEvent.Int("status", resp.StatusCode)
	}

	logEvent.Msg("Retrying request after retryable failure")
}

// logResponse logs the final response
func (c *client) logResponse(resp *Response) {
	c.logger.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int("attempts", resp.Stats.Attempts).
		Msg("API client response")
}
