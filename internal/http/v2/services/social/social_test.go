package social

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/cache"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/notify"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store/memory"
)

type fakeAdapter struct {
	name          string
	policy        providers.RedirectPolicy
	systemDefault bool

	exchangeErr error
	profileErr  error
	token       string

	mu        sync.Mutex
	exchanged []string // redirectURI|code|clientID
}

func (f *fakeAdapter) Platform() string                         { return f.name }
func (f *fakeAdapter) Scopes() []string                         { return []string{"basic"} }
func (f *fakeAdapter) RedirectPolicy() providers.RedirectPolicy { return f.policy }
func (f *fakeAdapter) AllowsSystemDefault() bool                { return f.systemDefault }

func (f *fakeAdapter) AuthorizeURL(c providers.Client, redirectURI, state string) string {
	q := url.Values{"client_id": {c.ID}, "redirect_uri": {redirectURI}, "state": {state}}
	return "https://auth." + f.name + ".test/authorize?" + q.Encode()
}

func (f *fakeAdapter) Exchange(_ context.Context, c providers.Client, redirectURI, code string) (*providers.TokenSet, error) {
	f.mu.Lock()
	f.exchanged = append(f.exchanged, redirectURI+"|"+code+"|"+c.ID)
	f.mu.Unlock()
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	tok := f.token
	if tok == "" {
		tok = "tok-" + code
	}
	return &providers.TokenSet{AccessToken: tok, RefreshToken: "refresh", Subject: "subject-1"}, nil
}

func (f *fakeAdapter) Profile(context.Context, providers.Client, *providers.TokenSet) (*providers.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &providers.Profile{Name: f.name + " user", Image: "https://img/" + f.name}, nil
}

type upgradingAdapter struct {
	*fakeAdapter
	upgradeErr error
}

func (u *upgradingAdapter) UpgradeToken(_ context.Context, _ providers.Client, t *providers.TokenSet) (*providers.TokenSet, error) {
	if u.upgradeErr != nil {
		return nil, u.upgradeErr
	}
	out := *t
	out.AccessToken = "long-" + t.AccessToken
	return &out, nil
}

type countingNotifier struct {
	mu     sync.Mutex
	events []notify.ConnectionEvent
}

func (n *countingNotifier) ConnectionCreated(_ context.Context, ev notify.ConnectionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

type failingConnections struct{ repository.ConnectionRepository }

func (failingConnections) Upsert(context.Context, repository.SocialConnection) (bool, error) {
	return false, errors.New("db down")
}

type fixture struct {
	svcs         Services
	deps         Deps
	integrations *memory.Integrations
	connections  *memory.Connections
	notifier     *countingNotifier
	linkedin     *fakeAdapter
	tiktok       *fakeAdapter
	facebook     *upgradingAdapter
	instagram    *upgradingAdapter
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		integrations: memory.NewIntegrations(),
		connections:  memory.NewConnections(),
		notifier:     &countingNotifier{},
		linkedin:     &fakeAdapter{name: "linkedin"},
		tiktok:       &fakeAdapter{name: "tiktok", systemDefault: true},
		facebook:     &upgradingAdapter{fakeAdapter: &fakeAdapter{name: "facebook"}},
		instagram:    &upgradingAdapter{fakeAdapter: &fakeAdapter{name: "instagram", policy: providers.RedirectFromRequestHost}},
	}
	f.deps = Deps{
		Adapters:      providers.NewRegistry(f.linkedin, f.tiktok, f.facebook, f.instagram),
		Connections:   f.connections,
		Integrations:  f.integrations,
		State:         statecodec.New([]byte("0123456789abcdef0123456789abcdef"), 10*time.Minute),
		Replay:        cache.NewMemory("test:", time.Minute),
		Notifier:      f.notifier,
		BaseURL:       "https://studio.test/",
		DashboardPath: "/dashboard",
		SystemClient: func(platform string) (providers.Client, bool) {
			if platform == "tiktok" {
				return providers.Client{ID: "sys-key", Secret: "sys-secret"}, true
			}
			return providers.Client{}, false
		},
	}
	for _, m := range mutate {
		m(&f.deps)
	}
	f.svcs = NewServices(f.deps)
	return f
}

func (f *fixture) integration(t *testing.T, principal, platform string) string {
	t.Helper()
	in, err := f.integrations.Upsert(context.Background(), repository.Integration{
		PrincipalID: principal, Platform: platform, ClientID: principal + "-" + platform + "-client", ClientSecret: "shh",
	})
	require.NoError(t, err)
	return in.ID
}

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func query(t *testing.T, redirect string) url.Values {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query()
}

func TestConnectStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.integration(t, "alice", "linkedin")

	res, err := f.svcs.Connect.Start(ctx, ConnectRequest{Platform: "linkedin", PrincipalID: "alice", IntegrationID: id})
	require.NoError(t, err)

	q := query(t, res.RedirectURL)
	assert.Equal(t, "alice-linkedin-client", q.Get("client_id"))
	assert.Equal(t, "https://studio.test/callback/linkedin", q.Get("redirect_uri"))

	payload, err := f.deps.State.Decode(q.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "alice", payload["principalId"])
	assert.Equal(t, id, payload["integrationId"])
	assert.Equal(t, "linkedin", payload["platform"])
}

func TestConnectStartErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	aliceID := f.integration(t, "alice", "linkedin")
	aliceTikTok := f.integration(t, "alice", "tiktok")

	tests := []struct {
		name string
		req  ConnectRequest
		want error
	}{
		{"no session", ConnectRequest{Platform: "linkedin", IntegrationID: aliceID}, ErrUnauthorized},
		{"unknown platform", ConnectRequest{Platform: "myspace", PrincipalID: "alice"}, ErrUnknownPlatform},
		{"integration owned by someone else", ConnectRequest{Platform: "linkedin", PrincipalID: "bob", IntegrationID: aliceID}, ErrInvalidIntegration},
		{"integration for another platform", ConnectRequest{Platform: "linkedin", PrincipalID: "alice", IntegrationID: aliceTikTok}, ErrInvalidIntegration},
		{"nonexistent integration", ConnectRequest{Platform: "linkedin", PrincipalID: "alice", IntegrationID: "nope"}, ErrInvalidIntegration},
		{"default not allowed", ConnectRequest{Platform: "linkedin", PrincipalID: "alice"}, ErrMissingIntegration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svcs.Connect.Start(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConnectSystemDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svcs.Connect.Start(ctx, ConnectRequest{Platform: "tiktok", PrincipalID: "alice", IntegrationID: "default"})
	require.NoError(t, err)
	assert.Equal(t, "sys-key", query(t, res.RedirectURL).Get("client_id"))

	unconfigured := newFixture(t, func(d *Deps) { d.SystemClient = nil })
	_, err = unconfigured.svcs.Connect.Start(ctx, ConnectRequest{Platform: "tiktok", PrincipalID: "alice"})
	assert.ErrorIs(t, err, ErrPlatformNotConfigured)
}

func TestConnectInstagramUsesRequestHost(t *testing.T) {
	f := newFixture(t)
	id := f.integration(t, "alice", "instagram")

	res, err := f.svcs.Connect.Start(context.Background(), ConnectRequest{
		Platform: "instagram", PrincipalID: "alice", IntegrationID: id, RequestBaseURL: "https://pr-42.preview.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pr-42.preview.test/callback/instagram", query(t, res.RedirectURL).Get("redirect_uri"))
}

func TestConnectErrorRedirect(t *testing.T) {
	f := newFixture(t)
	got := f.svcs.Connect.ErrorRedirect("linkedin", "", "unauthorized")
	assert.Equal(t, "https://studio.test/dashboard?error=unauthorized&platform=linkedin", got)
}

func startState(t *testing.T, f *fixture, platform, principal, integrationID string) string {
	t.Helper()
	res, err := f.svcs.Connect.Start(context.Background(), ConnectRequest{Platform: platform, PrincipalID: principal, IntegrationID: integrationID})
	require.NoError(t, err)
	return stateFrom(t, res.RedirectURL)
}

func TestCallbackConnectsAndOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.integration(t, "alice", "facebook")

	res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{
		Platform: "facebook", Code: "c1", State: startState(t, f, "facebook", "alice", id),
		SessionPrincipalID: "alice", SessionEmail: "alice@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, res.ErrorCode)
	assert.Equal(t, "https://studio.test/dashboard?connected=facebook", res.RedirectURL)

	conn, err := f.connections.Get(ctx, "alice", "facebook")
	require.NoError(t, err)
	assert.Equal(t, "long-tok-c1", conn.AccessToken)
	assert.Equal(t, "subject-1", conn.ProfileID)
	assert.Equal(t, id, conn.IntegrationID)
	assert.Equal(t, []string{"https://studio.test/callback/facebook|c1|alice-facebook-client"}, f.facebook.exchanged)

	// segundo callback para el mismo par: una sola fila, valores nuevos, sin segundo aviso
	_, err = f.svcs.Callback.Callback(ctx, CallbackRequest{
		Platform: "facebook", Code: "c2", State: startState(t, f, "facebook", "alice", id),
	})
	require.NoError(t, err)
	list, err := f.connections.ListByPrincipal(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "long-tok-c2", list[0].AccessToken)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, "alice@example.com", f.notifier.events[0].Email)
	assert.Equal(t, "facebook", f.notifier.events[0].Platform)
}

func TestCallbackSystemDefaultStoresNoIntegration(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "tiktok", Code: "tt", State: startState(t, f, "tiktok", "alice", "")})
	require.NoError(t, err)
	assert.Empty(t, res.ErrorCode)

	conn, err := f.connections.Get(ctx, "alice", "tiktok")
	require.NoError(t, err)
	assert.Empty(t, conn.IntegrationID)
	assert.Equal(t, "tok-tt", conn.AccessToken)
}

func TestCallbackMissingCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Callback.Callback(context.Background(), CallbackRequest{Platform: "linkedin", State: "x"})
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = f.svcs.Callback.Callback(context.Background(), CallbackRequest{Platform: "myspace", Code: "c"})
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestCallbackErrorCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("provider error", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", ProviderError: "user_cancelled_login"})
		require.NoError(t, err)
		assert.Equal(t, CodeAccessDenied, res.ErrorCode)
		assert.Equal(t, "linkedin", query(t, res.RedirectURL).Get("platform"))
	})

	t.Run("tampered state", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: "not-a-state"})
		require.NoError(t, err)
		assert.Equal(t, CodeInvalidState, res.ErrorCode)
	})

	t.Run("replayed state", func(t *testing.T) {
		f := newFixture(t)
		id := f.integration(t, "alice", "linkedin")
		st := startState(t, f, "linkedin", "alice", id)
		first, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: st})
		require.NoError(t, err)
		require.Empty(t, first.ErrorCode)

		again, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: st})
		require.NoError(t, err)
		assert.Equal(t, CodeStateReplayed, again.ErrorCode)
	})

	t.Run("platform mismatch", func(t *testing.T) {
		f := newFixture(t)
		id := f.integration(t, "alice", "linkedin")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "facebook", Code: "c", State: startState(t, f, "linkedin", "alice", id)})
		require.NoError(t, err)
		assert.Equal(t, CodePlatformMismatch, res.ErrorCode)
	})

	t.Run("state belongs to another session", func(t *testing.T) {
		f := newFixture(t)
		id := f.integration(t, "alice", "linkedin")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{
			Platform: "linkedin", Code: "c", State: startState(t, f, "linkedin", "alice", id), SessionPrincipalID: "mallory",
		})
		require.NoError(t, err)
		assert.Equal(t, CodeStateMismatch, res.ErrorCode)
	})

	t.Run("integration deleted mid-flow", func(t *testing.T) {
		f := newFixture(t)
		id := f.integration(t, "alice", "linkedin")
		st := startState(t, f, "linkedin", "alice", id)
		require.NoError(t, f.integrations.DeleteOwned(ctx, id, "alice"))
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: st})
		require.NoError(t, err)
		assert.Equal(t, CodeInvalidIntegration, res.ErrorCode)
	})

	t.Run("token exchange", func(t *testing.T) {
		f := newFixture(t)
		f.linkedin.exchangeErr = &providers.UpstreamError{Op: "linkedin.token", Status: 400}
		id := f.integration(t, "alice", "linkedin")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: startState(t, f, "linkedin", "alice", id)})
		require.NoError(t, err)
		assert.Equal(t, CodeTokenExchange, res.ErrorCode)
	})

	t.Run("long lived upgrade", func(t *testing.T) {
		f := newFixture(t)
		f.facebook.upgradeErr = errors.New("graph 500")
		id := f.integration(t, "alice", "facebook")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "facebook", Code: "c", State: startState(t, f, "facebook", "alice", id)})
		require.NoError(t, err)
		assert.Equal(t, CodeLongLivedExchange, res.ErrorCode)
	})

	t.Run("no instagram linked", func(t *testing.T) {
		f := newFixture(t)
		f.instagram.profileErr = providers.ErrNoInstagramLinked
		id := f.integration(t, "alice", "instagram")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{
			Platform: "instagram", Code: "c", State: startState(t, f, "instagram", "alice", id), RequestBaseURL: "https://pr-1.preview.test",
		})
		require.NoError(t, err)
		assert.Equal(t, CodeNoInstagramLinked, res.ErrorCode)
		assert.True(t, strings.HasPrefix(res.RedirectURL, "https://pr-1.preview.test/dashboard?"))
	})

	t.Run("profile fetch", func(t *testing.T) {
		f := newFixture(t)
		f.linkedin.profileErr = errors.New("timeout")
		id := f.integration(t, "alice", "linkedin")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: startState(t, f, "linkedin", "alice", id)})
		require.NoError(t, err)
		assert.Equal(t, CodeProfileFetch, res.ErrorCode)
	})

	t.Run("save", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Connections = failingConnections{} })
		id := f.integration(t, "alice", "linkedin")
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: startState(t, f, "linkedin", "alice", id)})
		require.NoError(t, err)
		assert.Equal(t, CodeSaveFailed, res.ErrorCode)
	})
}

func TestCallbackUnsignedStateHasNoReplayGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(d *Deps) { d.State = statecodec.New(nil, 0) })
	id := f.integration(t, "alice", "linkedin")
	st := startState(t, f, "linkedin", "alice", id)

	for i := 0; i < 2; i++ {
		res, err := f.svcs.Callback.Callback(ctx, CallbackRequest{Platform: "linkedin", Code: "c", State: st})
		require.NoError(t, err)
		assert.Empty(t, res.ErrorCode)
	}
}

func TestIntegrationManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svcs.Integrations.Save(ctx, "alice", dto.SaveIntegrationRequest{Platform: "linkedin", ClientID: "cid"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = f.svcs.Integrations.Save(ctx, "alice", dto.SaveIntegrationRequest{Platform: "myspace", ClientID: "cid", ClientSecret: "s"})
	assert.ErrorIs(t, err, ErrUnknownPlatform)

	saved, err := f.svcs.Integrations.Save(ctx, "alice", dto.SaveIntegrationRequest{Platform: " LinkedIn ", ClientID: "cid", ClientSecret: "s", Name: "Agencia"})
	require.NoError(t, err)
	assert.Equal(t, "linkedin", saved.Platform)

	list, err := f.svcs.Integrations.List(ctx, "alice", "linkedin")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Agencia", list[0].Name)

	assert.ErrorIs(t, f.svcs.Integrations.Delete(ctx, "bob", saved.ID), ErrInvalidIntegration)
	require.NoError(t, f.svcs.Integrations.Delete(ctx, "alice", saved.ID))
}

func TestConnectionManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.connections.Upsert(ctx, repository.SocialConnection{PrincipalID: "alice", Platform: "linkedin", AccessToken: "secret-token", ProfileName: "Alice"})
	require.NoError(t, err)

	list, err := f.svcs.Connections.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].ProfileName)

	assert.ErrorIs(t, f.svcs.Connections.Disconnect(ctx, "alice", "myspace"), ErrUnknownPlatform)
	require.NoError(t, f.svcs.Connections.Disconnect(ctx, "alice", "linkedin"))
	assert.ErrorIs(t, f.svcs.Connections.Disconnect(ctx, "alice", "linkedin"), repository.ErrNotFound)
}
