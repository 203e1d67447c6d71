package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/google/uuid"

	"github.com/prefect-community/prefect-cloud-go/config"
	"github.com/prefect-community/prefect-cloud-go/http"
	"github.com/prefect-community/prefect-cloud-go/logger"
)

// Client is the Prefect Cloud API client. All calls flow through the
// retrying transport configured at construction; the client itself is safe
// for concurrent use.
type Client struct {
	http      http.Client
	logger    logger.Logger
	validator *Validator
}

// New creates a Client wired from the loaded configuration.
func New(cfg *config.Config, log logger.Logger) *Client {
	httpClient := http.NewBuilder(log).
		WithBaseURL(cfg.API.URL).
		WithAuthToken(cfg.API.Key).
		WithPoolLimits(cfg.HTTP.Pool.MaxConnections, cfg.HTTP.Pool.MaxKeepalive, cfg.HTTP.Pool.KeepaliveExpiry).
		WithTimeouts(cfg.HTTP.Timeout.Connect, cfg.HTTP.Timeout.Read, cfg.HTTP.Timeout.Request).
		WithRetryPolicy(http.RetryPolicy{
			MaxRetries:      cfg.HTTP.Retry.MaxRetries,
			JitterFactor:    cfg.HTTP.Retry.JitterFactor,
			ExtraRetryCodes: cfg.HTTP.Retry.ExtraCodes,
		}).
		WithCSRF(cfg.HTTP.CSRF.Enabled).
		WithRaiseOnError(cfg.HTTP.RaiseOnError).
		WithRequestInterceptor(NewRequestIDInterceptor()).
		Build()

	return NewWithTransport(httpClient, log)
}

// NewWithTransport creates a Client over a prebuilt transport. Tests use this
// to point the client at mock servers.
func NewWithTransport(httpClient http.Client, log logger.Logger) *Client {
	return &Client{
		http:      httpClient,
		logger:    log,
		validator: NewValidator(),
	}
}

// NewRequestIDInterceptor returns a request interceptor that stamps every
// outgoing request with a fresh X-Request-ID unless the caller set one.
func NewRequestIDInterceptor() http.RequestInterceptor {
	return func(_ context.Context, req *nethttp.Request) error {
		if req.Header.Get(http.HeaderRequestID) == "" {
			req.Header.Set(http.HeaderRequestID, uuid.New().String())
		}
		return nil
	}
}

// Healthcheck verifies the API is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	_, err := c.request(ctx, nethttp.MethodGet, "/health", nil)
	return err
}

// request marshals the payload, sends the call through the transport and
// normalizes failed responses into HTTP errors regardless of the transport's
// raise-on-error setting.
func (c *Client) request(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	req := &http.Request{Path: path}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
		req.Body = body
	}

	resp, err := c.http.Do(ctx, method, req)
	if err != nil {
		return resp, err
	}

	if err := http.RaiseForStatus(resp); err != nil {
		return resp, err
	}

	return resp, nil
}

// decode unmarshals a response body into out.
func decode(resp *http.Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("malformed API response: %w", err)
	}
	return nil
}

// decodeCreatedID extracts the id field every create endpoint returns.
func decodeCreatedID(resp *http.Response) (uuid.UUID, error) {
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := decode(resp, &created); err != nil {
		return uuid.Nil, err
	}
	if created.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("malformed API response: missing id")
	}
	return created.ID, nil
}
