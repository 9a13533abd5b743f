// Package rate implementa rate limiting de ventana fija por key, en Redis
// (compartido entre réplicas) o en memoria.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func windowKey(prefix, key string, now time.Time, window time.Duration) (string, time.Duration) {
	start := now.Truncate(window)
	left := start.Add(window).Sub(now)
	return fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix()), left
}

func result(hits, max int64, left time.Duration) Result {
	res := Result{Allowed: hits <= max, CurrentHits: hits, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = left
	}
	return res
}

// RedisLimiter: fixed window (INCR + EXPIRE en el primer hit).
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey, left := windowKey(l.Prefix, key, l.now().UTC(), l.Window)

	hits, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	if hits == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
	}
	return result(hits, l.Max, left), nil
}
