package ratelimit

import "context"

// RateLimiter throttles outbound mail API calls per key. Allow reports
// whether a call fits the current window; Wait blocks until one does or the
// context is canceled.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Wait(ctx context.Context, key string) error
}
