package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultToolkitURL = "https://identitytoolkit.googleapis.com"

// Toolkit habla con la REST API de Identity Toolkit (Firebase Auth) usando la
// API key pública del proyecto.
type Toolkit struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewToolkit(baseURL, apiKey string, client *http.Client) *Toolkit {
	if baseURL == "" {
		baseURL = defaultToolkitURL
	}
	return &Toolkit{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Client: client}
}

type toolkitAccount struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *Toolkit) SignIn(ctx context.Context, email, secret string) (*Principal, error) {
	return t.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email": email, "password": secret, "returnSecureToken": true,
	})
}

func (t *Toolkit) SignUp(ctx context.Context, email, secret, displayName string) (*Principal, error) {
	body := map[string]any{"email": email, "password": secret, "returnSecureToken": true}
	if displayName != "" {
		body["displayName"] = displayName
	}
	return t.call(ctx, "accounts:signUp", body)
}

func (t *Toolkit) call(ctx context.Context, method string, body map[string]any) (*Principal, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	u := t.BaseURL + "/v1/" + method + "?key=" + url.QueryEscape(t.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		var te toolkitError
		_ = json.Unmarshal(raw, &te)
		return nil, mapToolkitError(method, resp.StatusCode, te.Error.Message)
	}
	var acc toolkitAccount
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("identity toolkit %s: decode: %w", method, err)
	}
	if acc.LocalID == "" {
		return nil, fmt.Errorf("identity toolkit %s: empty localId", method)
	}
	return &Principal{ID: acc.LocalID, Email: acc.Email, DisplayName: acc.DisplayName}, nil
}

// El message puede traer detalle: "TOO_MANY_ATTEMPTS_TRY_LATER : Access ...".
func mapToolkitError(method string, status int, message string) error {
	code := strings.TrimSpace(message)
	if i := strings.IndexAny(code, " :"); i > 0 {
		code = code[:i]
	}
	switch code {
	case "EMAIL_NOT_FOUND":
		return ErrNotFound
	case "INVALID_LOGIN_CREDENTIALS":
		// con email enumeration protection no se distingue "no existe" de "otro password";
		// el bridge intenta crear y resuelve por EMAIL_EXISTS.
		return ErrNotFound
	case "INVALID_PASSWORD":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrAlreadyExists
	}
	return fmt.Errorf("identity toolkit %s: http %d %s", method, status, code)
}
