// Package idtokentest emite ID tokens RS256 de prueba y sirve sus claves
// sin red, para tests de idtoken y de los handlers que lo usan.
package idtokentest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken"
)

type Issuer struct {
	Kid    string
	Key    *rsa.PrivateKey
	Domain idtoken.TrustDomain
}

// NewIssuer crea un emisor con el formato de un proyecto Firebase.
func NewIssuer(t testing.TB, name, projectID, kid string) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	d := idtoken.FirebaseDomain(name, projectID)
	d.KeysURL = "memory://" + name
	return &Issuer{Kid: kid, Key: key, Domain: d}
}

// Mint firma claims; iss, aud, iat y exp se completan si faltan.
func (i *Issuer) Mint(t testing.TB, claims jwtv5.MapClaims) string {
	t.Helper()
	return i.MintWith(t, i.Key, i.Kid, claims)
}

// MintWith firma con una clave/kid arbitrarios (tokens forjados).
func (i *Issuer) MintWith(t testing.TB, key *rsa.PrivateKey, kid string, claims jwtv5.MapClaims) string {
	t.Helper()
	now := time.Now()
	c := jwtv5.MapClaims{
		"iss": i.Domain.Issuer,
		"aud": i.Domain.Audience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		c[k] = v
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, c)
	tk.Header["kid"] = kid
	s, err := tk.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// CertPEM devuelve un certificado autofirmado con la clave pública del emisor.
func (i *Issuer) CertPEM(t testing.TB) string {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &i.Key.PublicKey, i.Key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

// Fetcher sirve key sets en memoria y cuenta fetches por dominio.
type Fetcher struct {
	mu    sync.Mutex
	sets  map[string]idtoken.KeySet
	calls map[string]int
}

func NewFetcher(issuers ...*Issuer) *Fetcher {
	f := &Fetcher{sets: map[string]idtoken.KeySet{}, calls: map[string]int{}}
	for _, i := range issuers {
		f.Add(i.Domain.Name, i.Kid, &i.Key.PublicKey)
	}
	return f
}

func (f *Fetcher) Add(domain, kid string, pub *rsa.PublicKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets[domain] == nil {
		f.sets[domain] = idtoken.KeySet{}
	}
	f.sets[domain][kid] = pub
}

func (f *Fetcher) Fetch(_ context.Context, d idtoken.TrustDomain) (idtoken.KeySet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[d.Name]++
	set, ok := f.sets[d.Name]
	if !ok {
		return nil, fmt.Errorf("no keys for %s", d.Name)
	}
	cp := make(idtoken.KeySet, len(set))
	for k, v := range set {
		cp[k] = v
	}
	return cp, nil
}

func (f *Fetcher) Calls(domain string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[domain]
}
