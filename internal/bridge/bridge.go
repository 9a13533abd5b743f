// Package bridge materializa una identidad externa verificada (email) como
// principal del dominio propio, con un secreto derivado del email que nunca
// se persiste.
package bridge

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/identity"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

const (
	MinKeyLen   = 16
	secretLen   = 24
	infoPrefix  = "credential-bridge:v1:"
	maxAttempts = 3
)

var (
	ErrEmptyEmail = errors.New("bridge: empty email")
	ErrNoKey      = errors.New("bridge: key not configured")
	// ErrUnresolved: sign-in y create siguen en conflicto después de maxAttempts rondas.
	ErrUnresolved = errors.New("bridge: could not converge on a principal")
)

type Result struct {
	Secret      string
	PrincipalID string
	Created     bool
}

type Bridge struct {
	key     []byte
	backend identity.Backend
}

func New(key []byte, backend identity.Backend) (*Bridge, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	if len(key) < MinKeyLen {
		return nil, fmt.Errorf("bridge: key must be at least %d bytes", MinKeyLen)
	}
	return &Bridge{key: key, backend: backend}, nil
}

// NormalizeEmail es la forma canónica sobre la que se deriva el secreto.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveSecret = base64url(HKDF-SHA256(key, info=prefix+email)[:24]).
// Mismo key + mismo email => mismo secreto, entre procesos y reinicios.
func (b *Bridge) DeriveSecret(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", ErrEmptyEmail
	}
	r := hkdf.New(sha256.New, b.key, nil, []byte(infoPrefix+email))
	out := make([]byte, secretLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", fmt.Errorf("bridge: hkdf: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// EnsurePrincipal: sign-in; si no existe, create; si create choca con otro
// caller concurrente, vuelve a sign-in. Errores del backend fuera de esos
// dos casos se propagan sin reintento.
func (b *Bridge) EnsurePrincipal(ctx context.Context, email, displayName string) (*Result, error) {
	email = NormalizeEmail(email)
	secret, err := b.DeriveSecret(email)
	if err != nil {
		return nil, err
	}
	log := logger.From(ctx).With(logger.Component("bridge"), logger.Email(email))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p, err := b.backend.SignIn(ctx, email, secret)
		switch {
		case err == nil:
			return &Result{Secret: secret, PrincipalID: p.ID}, nil
		case !errors.Is(err, identity.ErrNotFound):
			return nil, fmt.Errorf("bridge: sign-in: %w", err)
		}

		p, err = b.backend.SignUp(ctx, email, secret, displayName)
		switch {
		case err == nil:
			log.Info("principal provisioned", logger.PrincipalID(p.ID))
			return &Result{Secret: secret, PrincipalID: p.ID, Created: true}, nil
		case errors.Is(err, identity.ErrAlreadyExists):
			log.Debug("create lost race, retrying sign-in", zap.Int("attempt", attempt))
			continue
		default:
			return nil, fmt.Errorf("bridge: sign-up: %w", err)
		}
	}
	return nil, ErrUnresolved
}
