package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el equivalente in-process de RedisLimiter (una réplica).
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	k, left := windowKey("", key, l.now().UTC(), l.window)
	if err := l.c.Add(k, int64(1), l.window); err == nil {
		return result(1, l.max, left), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// expiró entre Add e Increment: nueva ventana
		l.c.Set(k, int64(1), l.window)
		hits = 1
	}
	return result(hits, l.max, left), nil
}
