package idtoken

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshInterval es la vida de un key set en cache.
const RefreshInterval = time.Hour

type cacheEntry struct {
	keys      KeySet
	fetchedAt time.Time
}

// KeyCache guarda el key set de cada trust domain. Se comparte por referencia
// entre todos los Verifier del proceso. Un kid desconocido no invalida la
// entrada ni dispara un refetch; solo la edad lo hace.
type KeyCache struct {
	fetcher  Fetcher
	now      func() time.Time
	interval time.Duration
	onFetch  func(domain string, err error)

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type CacheOption func(*KeyCache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *KeyCache) { c.now = now }
}

// WithFetchObserver recibe cada intento de fetch (métricas).
func WithFetchObserver(fn func(domain string, err error)) CacheOption {
	return func(c *KeyCache) { c.onFetch = fn }
}

func NewKeyCache(f Fetcher, opts ...CacheOption) *KeyCache {
	c := &KeyCache{
		fetcher:  f,
		now:      time.Now,
		interval: RefreshInterval,
		entries:  map[string]cacheEntry{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Keys devuelve el key set vigente, refrescándolo si falta o está vencido.
// Misses concurrentes del mismo dominio comparten un único fetch.
func (c *KeyCache) Keys(ctx context.Context, d TrustDomain) (KeySet, error) {
	c.mu.RLock()
	e, ok := c.entries[d.Name]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.interval {
		return e.keys, nil
	}

	v, err, _ := c.group.Do(d.Name, func() (any, error) {
		// otro caller pudo haber refrescado mientras esperábamos
		c.mu.RLock()
		e, ok := c.entries[d.Name]
		c.mu.RUnlock()
		if ok && c.now().Sub(e.fetchedAt) < c.interval {
			return e.keys, nil
		}

		keys, err := c.fetcher.Fetch(ctx, d)
		if c.onFetch != nil {
			c.onFetch(d.Name, err)
		}
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[d.Name] = cacheEntry{keys: keys, fetchedAt: c.now()}
		c.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(KeySet), nil
}

func (c *KeyCache) clock() time.Time { return c.now() }
