package identity

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memRecord struct {
	p      Principal
	secret string
}

// Memory es un backend en proceso; unicidad por email bajo mutex.
type Memory struct {
	mu   sync.Mutex
	byEm map[string]memRecord
}

func NewMemory() *Memory {
	return &Memory{byEm: map[string]memRecord{}}
}

func (m *Memory) SignIn(_ context.Context, email, secret string) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byEm[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	if subtle.ConstantTimeCompare([]byte(rec.secret), []byte(secret)) != 1 {
		return nil, ErrInvalidCredentials
	}
	p := rec.p
	return &p, nil
}

func (m *Memory) SignUp(_ context.Context, email, secret, displayName string) (*Principal, error) {
	key := strings.ToLower(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEm[key]; ok {
		return nil, ErrAlreadyExists
	}
	rec := memRecord{
		p:      Principal{ID: uuid.NewString(), Email: key, DisplayName: displayName},
		secret: secret,
	}
	m.byEm[key] = rec
	p := rec.p
	return &p, nil
}

// Len es para tests.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEm)
}
