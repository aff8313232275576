// Package ratelimit counts submissions per client address over a sliding
// window.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call. RetryAfter is set only when
// the request was rejected.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits at most limit requests per key in any window-long span.
// Rejected requests are not recorded.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
