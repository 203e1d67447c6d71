package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name     string
		err      ClientError
		expected ErrorType
		contains string
	}{
		{
			name:     "network error",
			err:      NewNetworkError("connection failed", errors.New("dial refused")),
			expected: NetworkError,
			contains: "network error: connection failed: dial refused",
		},
		{
			name:     "timeout error",
			err:      NewTimeoutError("request timed out", 30*time.Second),
			expected: TimeoutError,
			contains: "timeout: 30s",
		},
		{
			name:     "validation error with field",
			err:      NewValidationError("cannot be empty", "path"),
			expected: ValidationError,
			contains: "field: path",
		},
		{
			name:     "interceptor error",
			err:      NewInterceptorError("interceptor failed", "request", errors.New("boom")),
			expected: InterceptorError,
			contains: "stage: request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type())
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.True(t, IsErrorType(tt.err, tt.expected))
		})
	}
}

func TestIsErrorType(t *testing.T) {
	err := NewNetworkError("failed", nil)

	assert.True(t, IsErrorType(err, NetworkError))
	assert.False(t, IsErrorType(err, HTTPError))
	assert.False(t, IsErrorType(nil, NetworkError))
	assert.False(t, IsErrorType(errors.New("plain"), NetworkError))

	// Wrapped client errors are still recognized
	wrapped := fmt.Errorf("request failed: %w", err)
	assert.True(t, IsErrorType(wrapped, NetworkError))
}

func TestIsHTTPStatusError(t *testing.T) {
	err := NewHTTPError("not found", 404, nil)

	assert.True(t, IsHTTPStatusError(err, 404))
	assert.False(t, IsHTTPStatusError(err, 500))
	assert.False(t, IsHTTPStatusError(errors.New("plain"), 404))
	assert.False(t, IsHTTPStatusError(nil, 404))
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(204))
	assert.True(t, IsSuccessStatus(299))
	assert.False(t, IsSuccessStatus(199))
	assert.False(t, IsSuccessStatus(301))
	assert.False(t, IsSuccessStatus(404))
	assert.False(t, IsSuccessStatus(503))
}

func TestRaiseForStatus(t *testing.T) {
	t.Run("nil and successful responses pass", func(t *testing.T) {
		assert.NoError(t, RaiseForStatus(nil))
		assert.NoError(t, RaiseForStatus(&Response{StatusCode: 200}))
		assert.NoError(t, RaiseForStatus(&Response{StatusCode: 204}))
		assert.NoError(t, RaiseForStatus(&Response{StatusCode: 302}))
	})

	t.Run("client error with json detail", func(t *testing.T) {
		resp := &Response{
			StatusCode: nethttp.StatusNotFound,
			Body:       []byte(`{"detail": "Deployment not found"}`),
			URL:        "https://api.prefect.cloud/api/deployments/abc",
		}

		err := RaiseForStatus(resp)
		require.Error(t, err)
		assert.True(t, IsHTTPStatusError(err, nethttp.StatusNotFound))
		assert.Contains(t, err.Error(),
			"Client error '404 Not Found' for url 'https://api.prefect.cloud/api/deployments/abc'")
		assert.Contains(t, err.Error(), `Response: {"detail":"Deployment not found"}`)
	})

	t.Run("server error class", func(t *testing.T) {
		resp := &Response{StatusCode: 503, URL: "https://api.prefect.cloud/api/health"}

		err := RaiseForStatus(resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Server error '503 Service Unavailable'")
	})

	t.Run("non-json body yields summary only", func(t *testing.T) {
		resp := &Response{
			StatusCode: 502,
			Body:       []byte("<html>bad gateway</html>"),
			URL:        "https://api.prefect.cloud/api/flows/",
		}

		err := RaiseForStatus(resp)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "Response:")
		assert.NotContains(t, err.Error(), "<html>")
	})

	t.Run("raw body is preserved on the error", func(t *testing.T) {
		body := []byte(`{"detail":"denied"}`)
		err := RaiseForStatus(&Response{StatusCode: 403, Body: body})

		var httpErr *httpError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, body, httpErr.Body())
	})
}
