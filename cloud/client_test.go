package cloud

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefect-community/prefect-cloud-go/config"
	"github.com/prefect-community/prefect-cloud-go/http"
	"github.com/prefect-community/prefect-cloud-go/logger"
)

func testLogger() logger.Logger {
	return logger.New("error", false)
}

// newMockClient points a Client at an httptest server without retries, so
// endpoint tests stay focused on request/response shape.
func newMockClient(t *testing.T, handler nethttp.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport := http.NewBuilder(testLogger()).
		WithBaseURL(server.URL).
		WithRetryPolicy(http.RetryPolicy{}).
		Build()

	return NewWithTransport(transport, testLogger())
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{URL: apiURL, Key: "pnu_test"},
		HTTP: config.HTTPConfig{
			Pool: config.PoolConfig{
				MaxConnections:  16,
				MaxKeepalive:    8,
				KeepaliveExpiry: 25 * time.Second,
			},
			Timeout: config.TimeoutConfig{
				Connect: 60 * time.Second,
				Read:    60 * time.Second,
				Request: 60 * time.Second,
			},
			Retry: config.RetryConfig{MaxRetries: 1, JitterFactor: 0.2},
		},
		Log: config.LogConfig{Level: "error"},
	}
}

func TestNewWiresAuthAndRequestID(t *testing.T) {
	var seen nethttp.Header
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), testLogger())

	require.NoError(t, client.Healthcheck(context.Background()))
	assert.Equal(t, "Bearer pnu_test", seen.Get("Authorization"))
	assert.NotEmpty(t, seen.Get(http.HeaderRequestID))
}

func TestRequestIDInterceptorPreservesCallerValue(t *testing.T) {
	interceptor := NewRequestIDInterceptor()

	req := httptest.NewRequest(nethttp.MethodGet, "http://api.test/health", nil)
	req.Header.Set(http.HeaderRequestID, "caller-set")

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "caller-set", req.Header.Get(http.HeaderRequestID))
}

func TestHealthcheckFailure(t *testing.T) {
	client := newMockClient(t, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	})

	err := client.Healthcheck(context.Background())
	require.Error(t, err)
	assert.True(t, http.IsHTTPStatusError(err, nethttp.StatusServiceUnavailable))
}

func TestRequestNormalizesFailures(t *testing.T) {
	// The underlying transport is built without raise-on-error; request still
	// turns failed responses into HTTP errors for every endpoint.
	client := newMockClient(t, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"insufficient scope"}`))
	})

	_, err := client.request(context.Background(), nethttp.MethodGet, "/flows/", nil)
	require.Error(t, err)
	assert.True(t, http.IsHTTPStatusError(err, nethttp.StatusForbidden))
	assert.Contains(t, err.Error(), "insufficient scope")
}

func TestDecodeCreatedIDRejectsMissingID(t *testing.T) {
	client := newMockClient(t, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"etl"}`))
	})

	_, err := client.CreateFlowFromName(context.Background(), "etl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}
