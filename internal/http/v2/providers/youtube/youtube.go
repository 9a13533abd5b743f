// Package youtube implementa el adapter de YouTube sobre Google OAuth.
// Pide acceso offline con consent forzado para recibir siempre refresh token.
package youtube

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
)

const Platform = "youtube"

var scopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type Adapter struct {
	Endpoint    oauth2.Endpoint
	ChannelsURL string
	UserInfoURL string
	HTTP        *http.Client
}

func New(hc *http.Client) *Adapter {
	return &Adapter{
		Endpoint:    endpoints.Google,
		ChannelsURL: "https://www.googleapis.com/youtube/v3/channels?part=snippet&mine=true",
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		HTTP:        hc,
	}
}

func (a *Adapter) Platform() string                         { return Platform }
func (a *Adapter) Scopes() []string                         { return scopes }
func (a *Adapter) RedirectPolicy() providers.RedirectPolicy { return providers.RedirectFromBaseURL }
func (a *Adapter) AllowsSystemDefault() bool                { return false }

func (a *Adapter) config(c providers.Client, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ID,
		ClientSecret: c.Secret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint:     a.Endpoint,
	}
}

func (a *Adapter) AuthorizeURL(c providers.Client, redirectURI, state string) string {
	return a.config(c, redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (a *Adapter) Exchange(ctx context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	tok, err := a.config(c, redirectURI).Exchange(providers.OAuth2Context(ctx, a.HTTP), code)
	if err != nil {
		return nil, err
	}
	return providers.FromOAuth2(tok), nil
}

// Profile usa el canal propio; si la cuenta no tiene canal cae al userinfo de Google.
func (a *Adapter) Profile(ctx context.Context, _ providers.Client, t *providers.TokenSet) (*providers.Profile, error) {
	var channels struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title      string `json:"title"`
				Thumbnails struct {
					Default struct {
						URL string `json:"url"`
					} `json:"default"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := providers.GetJSON(ctx, a.HTTP, "youtube.channels", a.ChannelsURL, t.AccessToken, &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) > 0 {
		ch := channels.Items[0]
		return &providers.Profile{ID: ch.ID, Name: ch.Snippet.Title, Image: ch.Snippet.Thumbnails.Default.URL}, nil
	}

	var ui struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := providers.GetJSON(ctx, a.HTTP, "youtube.userinfo", a.UserInfoURL, t.AccessToken, &ui); err != nil {
		return nil, err
	}
	return &providers.Profile{ID: ui.Sub, Name: ui.Name, Image: ui.Picture}, nil
}
