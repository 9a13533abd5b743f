// Package cache provee un key/value con TTL sobre memoria (go-cache) o Redis.
// Lo usa el guard anti-replay del state OAuth.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get retorna ErrNotFound si la key no existe o expiró.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX guarda solo si la key no existe; ok=false si ya estaba.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (ok bool, err error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrNotFound = errors.New("cache: key not found")

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

type Config struct {
	Kind       string // "memory" | "redis"
	Addr       string
	Password   string
	DB         int
	Prefix     string
	DefaultTTL time.Duration
}

// New crea un cliente según Kind.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg), nil
	case "memory", "":
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("cache: unknown kind %q", cfg.Kind)
	}
}
