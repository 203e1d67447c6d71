// Package http provides the resilient HTTP transport used for every call
// against the Prefect Cloud API: a retrying client with Retry-After aware
// backoff, CSRF token lifecycle management, and enriched HTTP errors.
//
// Retries
//   - Controlled via Builder.WithRetryPolicy (default: 5 retries).
//   - Retries occur on:
//   - HTTP 408, 429, 502 and 503 responses, plus any extra configured codes
//   - Transport timeouts (connect, read, pool acquisition)
//   - Connection resets and sockets closed mid-write
//   - Malformed HTTP/1.1 and HTTP/2 protocol errors from misbehaving peers
//   - 403 responses carrying an "Invalid CSRF token" body (the cached token
//     is invalidated and refetched before the next attempt)
//   - All other responses are returned on the first attempt, unmodified.
//
// Backoff Strategy
//   - When the failing response carries a Retry-After header the delay is
//     sampled uniformly from [retryAfter, retryAfter*(1+jitter)] so the
//     server's requested wait is a hard lower bound.
//   - Otherwise exponential backoff is used: base = 2^attempt seconds with
//     symmetric jitter in [base*(1-jitter), base*(1+jitter)].
//   - No delay is computed after the final permitted attempt.
//
// Error semantics
//   - Exhausted transport errors surface as the original error, unwrapped.
//   - Exhausted HTTP failures surface as the final response; callers opt into
//     raise-on-error to receive a ClientError whose message appends the parsed
//     API error body under a "Response:" section.
package http
