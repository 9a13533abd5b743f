package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisClient struct {
	client *redis.Client
	prefix string
}

func NewRedis(cfg Config) Client {
	return NewRedisFromClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
}

// NewRedisFromClient reutiliza un *redis.Client ya creado (compartido con el rate limiter).
func NewRedisFromClient(c *redis.Client, prefix string) Client {
	return &redisClient{client: c, prefix: prefix}
}

func (r *redisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *redisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, value, ttl).Result()
}

func (r *redisClient) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error { return r.client.Close() }
