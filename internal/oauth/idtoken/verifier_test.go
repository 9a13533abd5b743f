package idtoken_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken/idtokentest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func claimsAt(now time.Time, extra jwtv5.MapClaims) jwtv5.MapClaims {
	c := jwtv5.MapClaims{"iat": now.Unix(), "exp": now.Add(3 * time.Hour).Unix()}
	for k, v := range extra {
		c[k] = v
	}
	return c
}

func TestVerify_ValidToken(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "partner:salesforge", "salesforge-prod", "k1")
	cache := idtoken.NewKeyCache(idtokentest.NewFetcher(iss))
	v, err := idtoken.NewVerifier(iss.Domain, cache)
	require.NoError(t, err)

	tok := iss.Mint(t, jwtv5.MapClaims{"user_id": "p1", "sub": "p1", "email": "a@x.com", "name": "A"})
	claims, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "A", claims.Name)
}

func TestVerify_FailuresCollapseToInvalidToken(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	fetcher := idtokentest.NewFetcher(iss)
	v, err := idtoken.NewVerifier(iss.Domain, idtoken.NewKeyCache(fetcher))
	require.NoError(t, err)

	rogue, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":        "not.a.jwt",
		"two segments":   "abc.def",
		"unknown kid":    iss.MintWith(t, iss.Key, "k-rotated", jwtv5.MapClaims{"sub": "u"}),
		"foreign key":    iss.MintWith(t, rogue, "k1", jwtv5.MapClaims{"sub": "u", "email": "a@x.com"}),
		"wrong audience": iss.Mint(t, jwtv5.MapClaims{"sub": "u", "aud": "someone-else"}),
		"wrong issuer":   iss.Mint(t, jwtv5.MapClaims{"sub": "u", "iss": "https://evil.example"}),
		"expired":        iss.Mint(t, jwtv5.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no exp":         iss.Mint(t, jwtv5.MapClaims{"sub": "u", "exp": nil}),
		"no subject":     iss.Mint(t, jwtv5.MapClaims{"email": "a@x.com"}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			require.Error(t, err)
			assert.ErrorIs(t, err, idtoken.ErrInvalidToken)
		})
	}
}

func TestVerify_RejectsHS256Downgrade(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	v, _ := idtoken.NewVerifier(iss.Domain, idtoken.NewKeyCache(idtokentest.NewFetcher(iss)))

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": iss.Domain.Issuer, "aud": iss.Domain.Audience, "sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tk.Header["kid"] = "k1"
	s, err := tk.SignedString([]byte("guess"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), s)
	assert.ErrorIs(t, err, idtoken.ErrInvalidToken)
}

func TestKeyCache_RefreshWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	fetcher := idtokentest.NewFetcher(iss)
	cache := idtoken.NewKeyCache(fetcher, idtoken.WithClock(clock.Now))
	v, err := idtoken.NewVerifier(iss.Domain, cache)
	require.NoError(t, err)

	tok := iss.Mint(t, claimsAt(clock.Now(), jwtv5.MapClaims{"sub": "u1"}))

	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), tok)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fetcher.Calls("self"))

	// unknown kid inside the window: no purge, no refetch
	_, err = v.Verify(context.Background(), iss.MintWith(t, iss.Key, "k9", claimsAt(clock.Now(), jwtv5.MapClaims{"sub": "u1"})))
	require.ErrorIs(t, err, idtoken.ErrInvalidToken)
	assert.Equal(t, 1, fetcher.Calls("self"))

	clock.Advance(59 * time.Minute)
	_, err = v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.Calls("self"))

	clock.Advance(2 * time.Minute)
	_, err = v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.Calls("self"))

	_, err = v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.Calls("self"))
}

func TestKeyCache_DomainsAreIsolated(t *testing.T) {
	self := idtokentest.NewIssuer(t, "self", "video-app", "shared-kid")
	partner := idtokentest.NewIssuer(t, "partner:leadhub", "leadhub-prod", "shared-kid")
	fetcher := idtokentest.NewFetcher(self, partner)
	cache := idtoken.NewKeyCache(fetcher)

	selfV, _ := idtoken.NewVerifier(self.Domain, cache)
	partnerV, _ := idtoken.NewVerifier(partner.Domain, cache)

	// a partner key with the same kid must not validate a token claiming to be ours
	forged := self.MintWith(t, partner.Key, "shared-kid", jwtv5.MapClaims{"sub": "u"})
	_, err := partnerV.Verify(context.Background(), partner.Mint(t, jwtv5.MapClaims{"sub": "p"}))
	require.NoError(t, err)
	_, err = selfV.Verify(context.Background(), forged)
	assert.ErrorIs(t, err, idtoken.ErrInvalidToken)

	assert.Equal(t, 1, fetcher.Calls("self"))
	assert.Equal(t, 1, fetcher.Calls("partner:leadhub"))
}

func TestKeyCache_ConcurrentMissesFetchOnce(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	certPEM := iss.CertPEM(t)
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{"k1": certPEM})
	}))
	defer srv.Close()

	d := iss.Domain
	d.KeysURL = srv.URL
	cache := idtoken.NewKeyCache(&idtoken.HTTPFetcher{Client: srv.Client()})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Keys(context.Background(), d)
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPFetcher_X509AndJWKS(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	pub := iss.Key.PublicKey
	certPEM := iss.CertPEM(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/x509", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"k1": certPEM})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA", "kid": "k1", "use": "sig",
			"n": base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e": base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &idtoken.HTTPFetcher{Client: srv.Client()}
	for _, tc := range []struct {
		path   string
		format idtoken.KeyFormat
	}{{"/x509", idtoken.FormatX509}, {"/jwks", idtoken.FormatJWKS}} {
		d := iss.Domain
		d.KeysURL = srv.URL + tc.path
		d.Format = tc.format
		keys, err := f.Fetch(context.Background(), d)
		require.NoError(t, err, tc.path)
		require.Contains(t, keys, "k1")
		assert.Equal(t, 0, keys["k1"].N.Cmp(pub.N), tc.path)
		assert.Equal(t, pub.E, keys["k1"].E)
	}

	d := iss.Domain
	d.KeysURL = srv.URL + "/down"
	_, err := f.Fetch(context.Background(), d)
	assert.Error(t, err)
}

func TestFirebaseDomain(t *testing.T) {
	d := idtoken.FirebaseDomain("self", "video-app")
	assert.Equal(t, "https://securetoken.google.com/video-app", d.Issuer)
	assert.Equal(t, "video-app", d.Audience)
	assert.Equal(t, idtoken.FormatX509, d.Format)

	_, err := idtoken.NewVerifier(idtoken.TrustDomain{Name: "x"}, idtoken.NewKeyCache(nil))
	assert.Error(t, err)
}

func TestVerify_HeaderRejectedBeforeKeyFetch(t *testing.T) {
	iss := idtokentest.NewIssuer(t, "self", "video-app", "k1")
	fetcher := idtokentest.NewFetcher(iss)
	v, err := idtoken.NewVerifier(iss.Domain, idtoken.NewKeyCache(fetcher))
	require.NoError(t, err)

	claims := jwtv5.MapClaims{"iss": iss.Domain.Issuer, "aud": iss.Domain.Audience, "sub": "u", "exp": time.Now().Add(time.Hour).Unix()}

	noKid, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(iss.Key)
	require.NoError(t, err)

	none := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims)
	none.Header["kid"] = "k1"
	unsigned, err := none.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	hs.Header["kid"] = "k1"
	hmac, err := hs.SignedString([]byte("shared"))
	require.NoError(t, err)

	for name, tok := range map[string]string{"no kid": noKid, "alg none": unsigned, "alg HS256": hmac} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, idtoken.ErrInvalidToken)
		})
	}
	assert.Equal(t, 0, fetcher.Calls("self"))
}
