// Package linkedin implementa el adapter de LinkedIn (OpenID Connect + w_member_social).
package linkedin

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
)

const Platform = "linkedin"

var scopes = []string{"openid", "profile", "email", "w_member_social"}

type Adapter struct {
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTP        *http.Client
	Now         func() time.Time
}

func New(hc *http.Client) *Adapter {
	return &Adapter{
		Endpoint:    endpoints.LinkedIn,
		UserInfoURL: "https://api.linkedin.com/v2/userinfo",
		HTTP:        hc,
		Now:         time.Now,
	}
}

func (a *Adapter) Platform() string                         { return Platform }
func (a *Adapter) Scopes() []string                         { return scopes }
func (a *Adapter) RedirectPolicy() providers.RedirectPolicy { return providers.RedirectFromBaseURL }
func (a *Adapter) AllowsSystemDefault() bool                { return false }

func (a *Adapter) config(c providers.Client, redirectURI string) *oauth2.Config {
	ep := a.Endpoint
	ep.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID:     c.ID,
		ClientSecret: c.Secret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint:     ep,
	}
}

func (a *Adapter) AuthorizeURL(c providers.Client, redirectURI, state string) string {
	return a.config(c, redirectURI).AuthCodeURL(state)
}

func (a *Adapter) Exchange(ctx context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	tok, err := a.config(c, redirectURI).Exchange(providers.OAuth2Context(ctx, a.HTTP), code)
	if err != nil {
		return nil, err
	}
	return providers.FromOAuth2(tok), nil
}

func (a *Adapter) Profile(ctx context.Context, _ providers.Client, t *providers.TokenSet) (*providers.Profile, error) {
	var ui struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := providers.GetJSON(ctx, a.HTTP, "linkedin.userinfo", a.UserInfoURL, t.AccessToken, &ui); err != nil {
		return nil, err
	}
	return &providers.Profile{ID: ui.Sub, Name: ui.Name, Image: ui.Picture}, nil
}
