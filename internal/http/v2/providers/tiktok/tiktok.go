// Package tiktok implementa el adapter de TikTok Login Kit v2. TikTok no
// sigue el formato OAuth2 estándar (client_key, scopes con coma, errores en
// 200), así que el canje es manual.
package tiktok

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
)

const Platform = "tiktok"

var scopes = []string{"user.info.basic", "video.publish", "video.upload"}

type Adapter struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	HTTP        *http.Client
	Now         func() time.Time
}

func New(hc *http.Client) *Adapter {
	return &Adapter{
		AuthURL:     "https://www.tiktok.com/v2/auth/authorize/",
		TokenURL:    "https://open.tiktokapis.com/v2/oauth/token/",
		UserInfoURL: "https://open.tiktokapis.com/v2/user/info/",
		HTTP:        hc,
		Now:         time.Now,
	}
}

func (a *Adapter) Platform() string                         { return Platform }
func (a *Adapter) Scopes() []string                         { return scopes }
func (a *Adapter) RedirectPolicy() providers.RedirectPolicy { return providers.RedirectFromBaseURL }

// AllowsSystemDefault: TikTok puede usar la app del sistema (TIKTOK_CLIENT_KEY).
func (a *Adapter) AllowsSystemDefault() bool { return true }

func (a *Adapter) AuthorizeURL(c providers.Client, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_key", c.ID)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return a.AuthURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	OpenID           string `json:"open_id"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (a *Adapter) Exchange(ctx context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	form := url.Values{}
	form.Set("client_key", c.ID)
	form.Set("client_secret", c.Secret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)

	var tr tokenResponse
	if err := providers.PostForm(ctx, a.HTTP, "tiktok.token", a.TokenURL, form, &tr); err != nil {
		return nil, err
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("tiktok.token: %s: %s", tr.Error, tr.ErrorDescription)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("tiktok.token: empty access_token")
	}
	return &providers.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		Scope:        tr.Scope,
		ExpiresAt:    providers.ExpiresIn(a.Now(), tr.ExpiresIn),
		Subject:      tr.OpenID,
	}, nil
}

func (a *Adapter) Profile(ctx context.Context, _ providers.Client, t *providers.TokenSet) (*providers.Profile, error) {
	var resp struct {
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				DisplayName string `json:"display_name"`
				AvatarURL   string `json:"avatar_url"`
			} `json:"user"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	u := a.UserInfoURL + "?fields=" + url.QueryEscape("open_id,display_name,avatar_url")
	if err := providers.GetJSON(ctx, a.HTTP, "tiktok.user_info", u, t.AccessToken, &resp); err != nil {
		return nil, err
	}
	if resp.Error.Code != "" && resp.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok.user_info: %s: %s", resp.Error.Code, resp.Error.Message)
	}
	user := resp.Data.User
	if user.OpenID == "" {
		user.OpenID = t.Subject
	}
	return &providers.Profile{ID: user.OpenID, Name: user.DisplayName, Image: user.AvatarURL}, nil
}
