package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const maxBody = 1 << 20

// UpstreamError es una respuesta no-2xx de la plataforma.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Body)
}

// GetJSON hace GET con bearer opcional y decodifica en out.
func GetJSON(ctx context.Context, hc *http.Client, op, rawURL, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	return do(hc, req, op, out)
}

// PostForm envía application/x-www-form-urlencoded y decodifica en out.
func PostForm(ctx context.Context, hc *http.Client, op, rawURL string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return do(hc, req, op, out)
}

func do(hc *http.Client, req *http.Request, op string, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: read: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: snippet}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// OAuth2Context hace que golang.org/x/oauth2 use hc para el canje.
func OAuth2Context(ctx context.Context, hc *http.Client) context.Context {
	if hc == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, hc)
}

// FromOAuth2 adapta un *oauth2.Token.
func FromOAuth2(t *oauth2.Token) *TokenSet {
	out := &TokenSet{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if !t.Expiry.IsZero() {
		exp := t.Expiry.UTC()
		out.ExpiresAt = &exp
	}
	if s, ok := t.Extra("scope").(string); ok {
		out.Scope = s
	}
	return out
}

// DefaultHTTPClient es el cliente saliente con timeout por llamada.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
