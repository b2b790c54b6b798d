package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a token bucket that admits at most burst events at once and
// one more every interval.
type Throttle struct {
	inner *rate.Limiter
}

func NewThrottle(interval time.Duration, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{inner: rate.NewLimiter(limit, burst)}
}

// Allow consumes a token if one is available.
func (t *Throttle) Allow() bool {
	return t.inner.Allow()
}

// Delay is how long until a token becomes available. It consumes nothing.
func (t *Throttle) Delay() time.Duration {
	r := t.inner.Reserve()
	defer r.Cancel()
	return r.Delay()
}
