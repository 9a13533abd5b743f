package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
)

func TestAuthorizeURLRequestsOfflineAccess(t *testing.T) {
	a := New(http.DefaultClient)
	u, err := url.Parse(a.AuthorizeURL(providers.Client{ID: "g-id"}, "https://app.test/callback/youtube", "st"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "https://www.googleapis.com/auth/youtube.upload")
	assert.Equal(t, "g-id", q.Get("client_id"))
}

func newServer(t *testing.T, channels string) *Adapter {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"g-token","refresh_token":"g-refresh","token_type":"Bearer","expires_in":3599}`))
	})
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer g-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(channels))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-sub","name":"Sin Canal","picture":"https://img/g.png"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	a := New(srv.Client())
	a.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	a.ChannelsURL = srv.URL + "/channels"
	a.UserInfoURL = srv.URL + "/userinfo"
	return a
}

func TestExchangeAndChannelProfile(t *testing.T) {
	a := newServer(t, `{"items":[{"id":"UC123","snippet":{"title":"Mi Canal","thumbnails":{"default":{"url":"https://img/ch.png"}}}}]}`)
	ctx := context.Background()

	tok, err := a.Exchange(ctx, providers.Client{ID: "g", Secret: "s"}, "https://app.test/callback/youtube", "code")
	require.NoError(t, err)
	assert.Equal(t, "g-refresh", tok.RefreshToken)

	p, err := a.Profile(ctx, providers.Client{}, tok)
	require.NoError(t, err)
	assert.Equal(t, &providers.Profile{ID: "UC123", Name: "Mi Canal", Image: "https://img/ch.png"}, p)
}

func TestProfileFallsBackToUserInfo(t *testing.T) {
	a := newServer(t, `{"items":[]}`)
	p, err := a.Profile(context.Background(), providers.Client{}, &providers.TokenSet{AccessToken: "g-token"})
	require.NoError(t, err)
	assert.Equal(t, &providers.Profile{ID: "g-sub", Name: "Sin Canal", Image: "https://img/g.png"}, p)
}
