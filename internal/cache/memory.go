package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient es un Client in-process; no se comparte entre réplicas.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
}

func NewMemory(prefix string, defaultTTL time.Duration) Client {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{prefix: prefix, c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.prefix + key)
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.c.Set(m.prefix+key, value, ttlOrDefault(ttl))
	return nil
}

// SetNX usa Add, que es atómico en go-cache.
func (m *memoryClient) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := m.c.Add(m.prefix+key, value, ttlOrDefault(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(m.prefix + key)
	return nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.DefaultExpiration
	}
	return ttl
}
