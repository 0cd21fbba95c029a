package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a keyed action may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	// RetryAfter is how long a rejected caller should wait before the next
	// attempt can pass.
	RetryAfter() time.Duration
}

var (
	_ Limiter = (*FixedWindowLimiter)(nil)
	_ Limiter = (*LocalLimiter)(nil)
)
