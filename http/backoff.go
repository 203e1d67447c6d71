package http

import (
	"math/rand"
	"sync"
	"time"
)

// randFloat returns a uniform sample from [0, 1). It is injected into the
// backoff computation so tests can pin delays to exact bounds.
type randFloat func() float64

// lockedRand wraps a seedable rand.Rand for use by concurrent sends.
// rand.Rand itself is not safe for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &lockedRand{rnd: rand.New(src)}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// retryAfterDelay computes the delay when the server supplied a Retry-After
// value. The requested wait is a hard lower bound; jitter only extends it so
// concurrent clients do not all retry at exactly the requested instant.
// The sample is uniform over [retryAfter, retryAfter*(1+jitterFactor)].
func retryAfterDelay(retryAfter, jitterFactor float64, rnd randFloat) time.Duration {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return uniformDelay(retryAfter, retryAfter*(1+jitterFactor), rnd)
}

// exponentialDelay computes the delay before retry number attempt (1-based)
// when no Retry-After header was present. The unjittered base is 2^attempt
// seconds; symmetric jitter samples uniformly from
// [base*(1-jitterFactor), base*(1+jitterFactor)], clamped to be non-negative.
func exponentialDelay(attempt int, jitterFactor float64, rnd randFloat) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Cap the exponent so the shift cannot overflow; the retry ceiling keeps
	// real attempts far below this.
	if attempt > 30 {
		attempt = 30
	}
	base := float64(int64(1) << attempt)
	return uniformDelay(base*(1-jitterFactor), base*(1+jitterFactor), rnd)
}

// uniformDelay samples uniformly from [low, high] seconds. With a zero-width
// interval (jitterFactor 0) it degenerates to the exact bound.
func uniformDelay(low, high float64, rnd randFloat) time.Duration {
	if low < 0 {
		low = 0
	}
	if high < low {
		high = low
	}
	seconds := low + (high-low)*rnd()
	return time.Duration(seconds * float64(time.Second))
}
