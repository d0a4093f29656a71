package reqcache

import "time"

// RateLimiter is a token bucket. Excess requests are dropped, not queued.
type RateLimiter struct {
	now           func() time.Time
	ratePerSecond float64
	burst         float64
	tokens        float64
	lastRefill    time.Time
}

// NewRateLimiter creates a limiter allowing ratePerSecond sustained and
// burst at once. The bucket starts full.
func NewRateLimiter(ratePerSecond float64, burst int, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		now:           now,
		ratePerSecond: ratePerSecond,
		burst:         float64(burst),
		tokens:        float64(burst),
		lastRefill:    now(),
	}
}

// Allow reports whether a request may proceed, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()

	r.tokens += elapsed * r.ratePerSecond
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.lastRefill = now

	if r.tokens >= 1.0 {
		r.tokens -= 1.0
		return true
	}
	return false
}
