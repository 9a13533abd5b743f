// Package memory implementa los repositorios en proceso (dev y tests).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
)

type connKey struct{ principal, platform string }

type Connections struct {
	mu   sync.RWMutex
	rows map[connKey]repository.SocialConnection
	now  func() time.Time
}

func NewConnections() *Connections {
	return &Connections{rows: map[connKey]repository.SocialConnection{}, now: time.Now}
}

func (r *Connections) Upsert(_ context.Context, c repository.SocialConnection) (bool, error) {
	if c.PrincipalID == "" || c.Platform == "" {
		return false, repository.ErrInvalidInput
	}
	k := connKey{c.PrincipalID, c.Platform}
	now := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	prev, exists := r.rows[k]
	if exists {
		c.CreatedAt = prev.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.rows[k] = c
	return !exists, nil
}

func (r *Connections) Get(_ context.Context, principalID, platform string) (*repository.SocialConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[connKey{principalID, platform}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Connections) ListByPrincipal(_ context.Context, principalID string) ([]repository.SocialConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.SocialConnection
	for k, c := range r.rows {
		if k.principal == principalID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (r *Connections) Delete(_ context.Context, principalID, platform string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := connKey{principalID, platform}
	if _, ok := r.rows[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

type Integrations struct {
	mu   sync.RWMutex
	byID map[string]repository.Integration
	now  func() time.Time
}

func NewIntegrations() *Integrations {
	return &Integrations{byID: map[string]repository.Integration{}, now: time.Now}
}

func (r *Integrations) Upsert(_ context.Context, in repository.Integration) (*repository.Integration, error) {
	if in.PrincipalID == "" || in.Platform == "" || in.ClientID == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cur := range r.byID {
		if cur.PrincipalID == in.PrincipalID && cur.Platform == in.Platform && cur.ClientID == in.ClientID {
			cur.ClientSecret = in.ClientSecret
			cur.Name = in.Name
			r.byID[id] = cur
			out := cur
			return &out, nil
		}
	}
	in.ID = uuid.NewString()
	in.CreatedAt = r.now().UTC()
	r.byID[in.ID] = in
	out := in
	return &out, nil
}

func (r *Integrations) GetOwned(_ context.Context, id, principalID string) (*repository.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.byID[id]
	if !ok || in.PrincipalID != principalID {
		return nil, repository.ErrNotFound
	}
	return &in, nil
}

func (r *Integrations) ListByPrincipal(_ context.Context, principalID, platform string) ([]repository.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Integration
	for _, in := range r.byID {
		if in.PrincipalID != principalID || (platform != "" && in.Platform != platform) {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Integrations) DeleteOwned(_ context.Context, id, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.byID[id]
	if !ok || in.PrincipalID != principalID {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type Principals struct {
	mu     sync.RWMutex
	logins map[string]repository.PrincipalLogin
}

func NewPrincipals() *Principals {
	return &Principals{logins: map[string]repository.PrincipalLogin{}}
}

func (r *Principals) RecordLogin(_ context.Context, in repository.PrincipalLogin) error {
	if in.PrincipalID == "" {
		return repository.ErrInvalidInput
	}
	r.mu.Lock()
	r.logins[in.PrincipalID] = in
	r.mu.Unlock()
	return nil
}

func (r *Principals) GetLogin(_ context.Context, principalID string) (*repository.PrincipalLogin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.logins[principalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &in, nil
}
