package torn

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// keyLimiter keeps one token bucket per API key; the Torn API limits each key separately.
type keyLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newKeyLimiter(perMinute, burst int) *keyLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &keyLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (l *keyLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Wait blocks until a request with key is allowed or ctx is done.
func (l *keyLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}
