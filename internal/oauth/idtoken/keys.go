package idtoken

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// KeySet es kid -> clave pública RSA.
type KeySet map[string]*rsa.PublicKey

// Fetcher obtiene el key set actual de un dominio.
type Fetcher interface {
	Fetch(ctx context.Context, d TrustDomain) (KeySet, error)
}

// HTTPFetcher baja claves por HTTP en formato x509 (PEM por kid) o JWKS.
type HTTPFetcher struct {
	Client *http.Client
}

const maxKeysBody = 1 << 20

func (f *HTTPFetcher) Fetch(ctx context.Context, d TrustDomain) (KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.KeysURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("keys http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeysBody))
	if err != nil {
		return nil, err
	}
	if d.Format == FormatJWKS {
		return parseJWKS(body)
	}
	return parseX509Map(body)
}

func parseX509Map(body []byte) (KeySet, error) {
	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("x509 key map: %w", err)
	}
	out := make(KeySet, len(certs))
	for kid, pemStr := range certs {
		pub, err := jwtv5.ParseRSAPublicKeyFromPEM([]byte(pemStr))
		if err != nil {
			return nil, fmt.Errorf("kid %s: %w", kid, err)
		}
		out[kid] = pub
	}
	if len(out) == 0 {
		return nil, errors.New("empty key set")
	}
	return out, nil
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseJWKS(body []byte) (KeySet, error) {
	var set struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	out := make(KeySet, len(set.Keys))
	for _, k := range set.Keys {
		if !strings.EqualFold(k.Kty, "RSA") || k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := rsaFromJWK(k)
		if err != nil {
			return nil, fmt.Errorf("kid %s: %w", k.Kid, err)
		}
		out[k.Kid] = pub
	}
	if len(out) == 0 {
		return nil, errors.New("empty key set")
	}
	return out, nil
}

func rsaFromJWK(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 65537
	if len(eb) > 0 {
		e = 0
		for _, b := range eb {
			e = e<<8 | int(b)
		}
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
