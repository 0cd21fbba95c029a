package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxLocalKeys bounds memory when many distinct clients submit.
const maxLocalKeys = 10000

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when no Redis is
// configured. Quotas are not shared between instances.
type LocalLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*localEntry
}

// NewLocalLimiter allows limit events per window per key, refilled evenly.
func NewLocalLimiter(limit int, window time.Duration) (*LocalLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	return &LocalLimiter{
		limit:  rate.Every(window / time.Duration(limit)),
		burst:  limit,
		window: window,
		now:    time.Now,
		keys:   make(map[string]*localEntry),
	}, nil
}

// Allow reports whether key still has a token.
func (l *LocalLimiter) Allow(_ context.Context, key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.keys[key]
	if !ok {
		if len(l.keys) >= maxLocalKeys {
			l.evictIdle(now)
		}
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.keys[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RetryAfter is the refill interval of a single token.
func (l *LocalLimiter) RetryAfter() time.Duration {
	return l.window / time.Duration(l.burst)
}

// evictIdle drops keys untouched for a full window; their buckets are full
// again, so forgetting them changes nothing.
func (l *LocalLimiter) evictIdle(now time.Time) {
	for k, e := range l.keys {
		if now.Sub(e.lastSeen) >= l.window {
			delete(l.keys, k)
		}
	}
}
