package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// csrfTokenPath is the endpoint issuing CSRF tokens
	csrfTokenPath = "/csrf-token"
	// csrfDisabledMarker is the body fragment a 422 carries when the server
	// has CSRF protection turned off
	csrfDisabledMarker = "CSRF protection is disabled."
)

// csrfToken is the token endpoint's response payload.
type csrfToken struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// fetchTokenFunc issues the token request through the client's own retrying
// pipeline and returns the raw response, without raise-on-error semantics.
type fetchTokenFunc func(ctx context.Context) (*Response, error)

// csrfManager owns the CSRF token lifecycle for one client instance. The
// cached token moves through four states: no token yet, valid, expired
// (checked lazily against the cached expiration before every mutating
// request) and permanently disabled.
//
// The mutex only keeps the cached fields data-race free; it is deliberately
// released while a token fetch is in flight. Concurrent mutating requests
// hitting an expired token may therefore each issue a refetch. That redundancy
// is tolerated: the worst case is an extra GET, not corruption, and it keeps
// a slow token fetch from serializing unrelated requests.
type csrfManager struct {
	mu         sync.Mutex
	enabled    bool
	token      string
	expiration time.Time
	clientID   uuid.UUID

	// now is a seam for expiry tests
	now func() time.Time
}

// newCsrfManager creates a manager with a stable client identifier. When
// enabled is false the manager is permanently disabled and attaches nothing.
func newCsrfManager(enabled bool) *csrfManager {
	return &csrfManager{
		enabled:  enabled,
		clientID: uuid.New(),
		now:      time.Now,
	}
}

// ClientID returns the stable per-client identifier sent with token fetches
// and mutating requests.
func (m *csrfManager) ClientID() uuid.UUID {
	return m.clientID
}

// Enabled reports whether CSRF support is still active for this client.
func (m *csrfManager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Invalidate clears the cached token so the next mutating request refetches
// instead of retrying with a token the server already rejected.
func (m *csrfManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiration = time.Time{}
}

// Attach injects the CSRF headers into header, fetching or refreshing the
// token first when the cache is empty or past its expiration. A token is
// never attached past its expiration.
func (m *csrfManager) Attach(ctx context.Context, header nethttp.Header, fetch fetchTokenFunc) error {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return nil
	}

	token := m.token
	if token == "" || m.now().After(m.expiration) {
		m.mu.Unlock()

		refreshed, err := m.refresh(ctx, fetch)
		if err != nil {
			return err
		}
		if !refreshed {
			// The server does not support CSRF; nothing to attach, now or ever.
			return nil
		}

		m.mu.Lock()
		token = m.token
	}

	clientID := m.clientID.String()
	m.mu.Unlock()

	header.Set(HeaderCsrfToken, token)
	header.Set(HeaderCsrfClient, clientID)
	return nil
}

// refresh fetches a fresh token and caches it. It returns false (with no
// error) when the server turned out not to support CSRF protection, which
// permanently disables the manager: a 404 means an older server without the
// token endpoint, a 422 carrying the disabled marker means protection is
// switched off server-side.
func (m *csrfManager) refresh(ctx context.Context, fetch fetchTokenFunc) (bool, error) {
	resp, err := fetch(ctx)
	if err != nil {
		return false, err
	}

	if resp.StatusCode == nethttp.StatusNotFound ||
		(resp.StatusCode == nethttp.StatusUnprocessableEntity &&
			strings.Contains(string(resp.Body), csrfDisabledMarker)) {
		m.mu.Lock()
		m.enabled = false
		m.mu.Unlock()
		return false, nil
	}

	if !IsSuccessStatus(resp.StatusCode) {
		return false, RaiseForStatus(resp)
	}

	var token csrfToken
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return false, fmt.Errorf("malformed csrf token response: %w", err)
	}

	m.mu.Lock()
	m.token = token.Token
	m.expiration = token.Expiration
	m.mu.Unlock()
	return true, nil
}

// tokenPath returns the token endpoint path carrying the client identifier.
func (m *csrfManager) tokenPath() string {
	return fmt.Sprintf("%s?client=%s", csrfTokenPath, m.clientID)
}
