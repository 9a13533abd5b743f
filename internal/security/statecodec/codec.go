// Package statecodec serializa el payload opaco que viaja por el parámetro
// state de los redirects OAuth y del login cross-app.
//
// Con clave, el state es un JWT HS256 con el payload en el claim "p", exp y un
// nonce (jti). Sin clave, es base64url(JSON) sin integridad.
package statecodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	tokens "github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/token"
)

const (
	audience    = "oauth-state"
	payloadKey  = "p"
	expiryGrace = 30 * time.Second
)

var ErrInvalidState = errors.New("invalid state")

// Decoded es el resultado completo de Decode. Nonce y ExpiresAt solo existen en modo firmado.
type Decoded struct {
	Payload   map[string]any
	Nonce     string
	ExpiresAt time.Time
}

type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Codec)

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// New crea un codec; key vacía = modo sin firma.
func New(key []byte, ttl time.Duration, opts ...Option) *Codec {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &Codec{key: key, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Codec) Signed() bool { return len(c.key) > 0 }

// WithKey devuelve un codec con el mismo TTL y reloj firmado con key.
// El state cross-app se firma con el shared secret del partner.
func (c *Codec) WithKey(key []byte) *Codec {
	cp := *c
	cp.key = key
	return &cp
}

func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Encode(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	if !c.Signed() {
		b, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("statecodec: marshal: %w", err)
		}
		return base64.RawURLEncoding.EncodeToString(b), nil
	}

	nonce, err := tokens.Random(16)
	if err != nil {
		return "", fmt.Errorf("statecodec: nonce: %w", err)
	}
	now := c.now().UTC()
	claims := jwtv5.MapClaims{
		payloadKey: payload,
		"aud":      audience,
		"iat":      now.Unix(),
		"exp":      now.Add(c.ttl).Unix(),
		"jti":      nonce,
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("statecodec: sign: %w", err)
	}
	return signed, nil
}

// Decode devuelve solo el payload.
func (c *Codec) Decode(s string) (map[string]any, error) {
	d, err := c.DecodeFull(s)
	if err != nil {
		return nil, err
	}
	return d.Payload, nil
}

// DecodeFull nunca paniquea ante input malformado; todo fallo es ErrInvalidState.
func (c *Codec) DecodeFull(s string) (*Decoded, error) {
	if s == "" {
		return nil, ErrInvalidState
	}
	if !c.Signed() {
		return decodePlain(s)
	}

	tk, err := jwtv5.Parse(s, func(*jwtv5.Token) (any, error) { return c.key, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithAudience(audience),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(expiryGrace),
		jwtv5.WithTimeFunc(c.now),
	)
	if err != nil || !tk.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidState
	}
	payload, ok := mc[payloadKey].(map[string]any)
	if !ok {
		return nil, ErrInvalidState
	}
	out := &Decoded{Payload: payload}
	out.Nonce, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func decodePlain(s string) (*Decoded, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		// tolerar padding estándar
		if b, err = base64.URLEncoding.DecodeString(s); err != nil {
			return nil, ErrInvalidState
		}
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil || payload == nil {
		return nil, ErrInvalidState
	}
	return &Decoded{Payload: payload}, nil
}

// String lee un campo string del payload; ausente o de otro tipo = "".
func String(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// SafeRedirect acepta solo paths relativos al propio host ("/x", no "//x" ni URLs absolutas).
func SafeRedirect(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return ""
	}
	return p
}
