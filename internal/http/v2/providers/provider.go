// Package providers define el motor de conexión por plataforma.
//
// Cada plataforma (Facebook, Instagram, LinkedIn, TikTok, YouTube) es un
// Adapter: scopes fijos, URL de autorización, canje del code, perfil y,
// si aplica, el upgrade a token de larga duración (LongLivedUpgrader).
// El flujo connect/callback es único y vive en services/social.
package providers

import (
	"context"
	"errors"
	"time"
)

// RedirectPolicy define de dónde sale el host del redirect_uri.
type RedirectPolicy int

const (
	// RedirectFromBaseURL usa NEXT_PUBLIC_APP_URL.
	RedirectFromBaseURL RedirectPolicy = iota
	// RedirectFromRequestHost usa el host del request (previews/túneles).
	RedirectFromRequestHost
)

// Client son las credenciales de la app OAuth: una Integration del principal
// o la app default del sistema.
type Client struct {
	ID     string
	Secret string
}

type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    *time.Time
	// Subject es el id de cuenta que algunas plataformas devuelven junto al token (open_id de TikTok).
	Subject string
}

type Profile struct {
	ID    string
	Name  string
	Image string
}

type Adapter interface {
	Platform() string
	Scopes() []string
	RedirectPolicy() RedirectPolicy
	// AllowsSystemDefault: la plataforma puede conectarse sin Integration propia.
	AllowsSystemDefault() bool
	AuthorizeURL(c Client, redirectURI, state string) string
	Exchange(ctx context.Context, c Client, redirectURI, code string) (*TokenSet, error)
	Profile(ctx context.Context, c Client, t *TokenSet) (*Profile, error)
}

// LongLivedUpgrader es opcional: plataformas que emiten tokens cortos.
type LongLivedUpgrader interface {
	UpgradeToken(ctx context.Context, c Client, t *TokenSet) (*TokenSet, error)
}

// ErrNoInstagramLinked: ninguna página de Facebook tiene cuenta de Instagram Business.
var ErrNoInstagramLinked = errors.New("no instagram business account linked to any page")

// ExpiresIn convierte expires_in (segundos) en un instante; 0 = sin expiración conocida.
func ExpiresIn(now time.Time, seconds int64) *time.Time {
	if seconds <= 0 {
		return nil
	}
	t := now.Add(time.Duration(seconds) * time.Second).UTC()
	return &t
}
