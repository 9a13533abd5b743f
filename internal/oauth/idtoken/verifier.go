package idtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken es el único error que ve el caller, sea cual sea la causa.
var ErrInvalidToken = errors.New("invalid token")

const clockSkew = 30 * time.Second

type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	Raw           jwtv5.MapClaims
}

// Verifier valida tokens de un único trust domain.
type Verifier struct {
	domain TrustDomain
	cache  *KeyCache
}

func NewVerifier(d TrustDomain, cache *KeyCache) (*Verifier, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, errors.New("idtoken: nil key cache")
	}
	return &Verifier{domain: d, cache: cache}, nil
}

func (v *Verifier) Domain() TrustDomain { return v.domain }

func invalid(cause error) error {
	return fmt.Errorf("%w: %v", ErrInvalidToken, cause)
}

// Verify chequea firma RS256 con la clave del kid, aud, iss, exp e iat.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	kid, err := headerKid(raw)
	if err != nil {
		return nil, invalid(err)
	}
	keys, err := v.cache.Keys(ctx, v.domain)
	if err != nil {
		return nil, invalid(fmt.Errorf("keys: %w", err))
	}
	key, ok := keys[kid]
	if !ok {
		return nil, invalid(fmt.Errorf("unknown kid %q", kid))
	}

	tk, err := jwtv5.Parse(raw, func(*jwtv5.Token) (any, error) { return key, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodRS256.Alg()}),
		jwtv5.WithAudience(v.domain.Audience),
		jwtv5.WithIssuer(v.domain.Issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuedAt(),
		jwtv5.WithLeeway(clockSkew),
		jwtv5.WithTimeFunc(v.cache.clock),
	)
	if err != nil || !tk.Valid {
		return nil, invalid(err)
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, invalid(errors.New("unexpected claims type"))
	}

	out := &Claims{Raw: mc}
	out.Subject, _ = mc["user_id"].(string)
	if out.Subject == "" {
		out.Subject, _ = mc.GetSubject()
	}
	if out.Subject == "" {
		return nil, invalid(errors.New("missing subject"))
	}
	out.Email, _ = mc["email"].(string)
	out.EmailVerified, _ = mc["email_verified"].(bool)
	out.Name, _ = mc["name"].(string)
	out.Picture, _ = mc["picture"].(string)
	return out, nil
}

// headerKid lee el header sin confiar en la firma.
func headerKid(raw string) (string, error) {
	tk, _, err := jwtv5.NewParser().ParseUnverified(raw, jwtv5.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("header: %w", err)
	}
	if alg, _ := tk.Header["alg"].(string); alg != jwtv5.SigningMethodRS256.Alg() {
		return "", fmt.Errorf("unexpected alg %q", alg)
	}
	kid, _ := tk.Header["kid"].(string)
	if kid == "" {
		return "", errors.New("missing kid")
	}
	return kid, nil
}
