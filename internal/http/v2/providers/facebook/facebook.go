// Package facebook implementa el adapter de Facebook (Graph API) y los
// helpers de Graph que reutiliza Instagram.
package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
)

const (
	Platform     = "facebook"
	GraphVersion = "v19.0"
)

var scopes = []string{"public_profile", "pages_show_list", "pages_read_engagement", "pages_manage_posts"}

// Graph agrupa los endpoints de Facebook; los tests los apuntan a httptest.
type Graph struct {
	DialogURL string // https://www.facebook.com/<ver>/dialog/oauth
	GraphURL  string // https://graph.facebook.com/<ver>
	HTTP      *http.Client
	Now       func() time.Time
}

func DefaultGraph(hc *http.Client) Graph {
	return Graph{
		DialogURL: "https://www.facebook.com/" + GraphVersion + "/dialog/oauth",
		GraphURL:  "https://graph.facebook.com/" + GraphVersion,
		HTTP:      hc,
		Now:       time.Now,
	}
}

func (g Graph) oauth2Config(c providers.Client, redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ID,
		ClientSecret: c.Secret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.DialogURL,
			TokenURL:  g.GraphURL + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL arma el diálogo de login con scopes separados por coma.
func (g Graph) AuthorizeURL(c providers.Client, redirectURI, state string, scopes []string) string {
	cfg := g.oauth2Config(c, redirectURI, nil)
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("scope", strings.Join(scopes, ",")))
}

// Exchange canjea el code por el token de corta duración.
func (g Graph) Exchange(ctx context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	tok, err := g.oauth2Config(c, redirectURI, nil).Exchange(providers.OAuth2Context(ctx, g.HTTP), code)
	if err != nil {
		return nil, err
	}
	return providers.FromOAuth2(tok), nil
}

// ExchangeLongLived cambia un token corto por uno de ~60 días (grant fb_exchange_token).
func (g Graph) ExchangeLongLived(ctx context.Context, c providers.Client, short *providers.TokenSet) (*providers.TokenSet, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", c.ID)
	q.Set("client_secret", c.Secret)
	q.Set("fb_exchange_token", short.AccessToken)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := providers.GetJSON(ctx, g.HTTP, "facebook.long_lived", g.GraphURL+"/oauth/access_token?"+q.Encode(), "", &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("facebook.long_lived: empty access_token")
	}
	out := *short
	out.AccessToken = resp.AccessToken
	if resp.TokenType != "" {
		out.TokenType = resp.TokenType
	}
	out.ExpiresAt = providers.ExpiresIn(g.Now(), resp.ExpiresIn)
	return &out, nil
}

// Adapter es la conexión de perfil/páginas de Facebook.
type Adapter struct {
	Graph Graph
}

func New(hc *http.Client) *Adapter {
	return &Adapter{Graph: DefaultGraph(hc)}
}

func (a *Adapter) Platform() string                         { return Platform }
func (a *Adapter) Scopes() []string                         { return scopes }
func (a *Adapter) RedirectPolicy() providers.RedirectPolicy { return providers.RedirectFromBaseURL }
func (a *Adapter) AllowsSystemDefault() bool                { return false }

func (a *Adapter) AuthorizeURL(c providers.Client, redirectURI, state string) string {
	return a.Graph.AuthorizeURL(c, redirectURI, state, scopes)
}

func (a *Adapter) Exchange(ctx context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	return a.Graph.Exchange(ctx, c, redirectURI, code)
}

func (a *Adapter) UpgradeToken(ctx context.Context, c providers.Client, t *providers.TokenSet) (*providers.TokenSet, error) {
	return a.Graph.ExchangeLongLived(ctx, c, t)
}

func (a *Adapter) Profile(ctx context.Context, _ providers.Client, t *providers.TokenSet) (*providers.Profile, error) {
	var me struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	u := a.Graph.GraphURL + "/me?fields=" + url.QueryEscape("id,name,picture.type(large)")
	if err := providers.GetJSON(ctx, a.Graph.HTTP, "facebook.me", u, t.AccessToken, &me); err != nil {
		return nil, err
	}
	return &providers.Profile{ID: me.ID, Name: me.Name, Image: me.Picture.Data.URL}, nil
}
