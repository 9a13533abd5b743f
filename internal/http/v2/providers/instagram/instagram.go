// Package instagram conecta una cuenta de Instagram Business a través del
// login de Facebook: el perfil es la cuenta IG vinculada a alguna página.
// El redirect_uri sale del host del request para soportar dominios de preview.
package instagram

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/facebook"
)

const Platform = "instagram"

var scopes = []string{
	"instagram_business_basic",
	"instagram_business_content_publish",
	"instagram_business_manage_comments",
	"instagram_business_manage_insights",
	"pages_show_list",
}

type Adapter struct {
	Graph facebook.Graph
}

func New(hc *http.Client) *Adapter {
	return &Adapter{Graph: facebook.DefaultGraph(hc)}
}

func (a *Adapter) Platform() string                         { return Platform }
func (a *Adapter) Scopes() []string                         { return scopes }
func (a *Adapter) RedirectPolicy() providers.RedirectPolicy { return providers.RedirectFromRequestHost }
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

type igAccount struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type pagesResponse struct {
	Data []struct {
		ID                       string     `json:"id"`
		Name                     string     `json:"name"`
		InstagramBusinessAccount *igAccount `json:"instagram_business_account"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

const maxPages = 5

// Profile recorre las páginas del usuario y toma la primera con cuenta IG Business.
func (a *Adapter) Profile(ctx context.Context, _ providers.Client, t *providers.TokenSet) (*providers.Profile, error) {
	fields := "id,name,instagram_business_account{id,username,profile_picture_url}"
	next := a.Graph.GraphURL + "/me/accounts?fields=" + url.QueryEscape(fields)

	for i := 0; i < maxPages && next != ""; i++ {
		var resp pagesResponse
		if err := providers.GetJSON(ctx, a.Graph.HTTP, "instagram.pages", next, t.AccessToken, &resp); err != nil {
			return nil, err
		}
		for _, page := range resp.Data {
			ig := page.InstagramBusinessAccount
			if ig == nil || ig.ID == "" {
				continue
			}
			name := ig.Username
			if name == "" {
				name = page.Name
			}
			return &providers.Profile{ID: ig.ID, Name: name, Image: ig.ProfilePictureURL}, nil
		}
		next = resp.Paging.Next
	}
	return nil, providers.ErrNoInstagramLinked
}
