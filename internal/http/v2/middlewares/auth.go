package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// SessionVerifier valida el id token de la sesión propia.
type SessionVerifier interface {
	Verify(ctx context.Context, raw string) (*idtoken.Claims, error)
}

// sessionToken lee Authorization: Bearer o, si falta, la cookie de sesión.
func sessionToken(r *http.Request, cookie string) string {
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	if cookie == "" {
		return ""
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}

func resolve(r *http.Request, v SessionVerifier, cookie string) *Principal {
	raw := sessionToken(r, cookie)
	if raw == "" || v == nil {
		return nil
	}
	claims, err := v.Verify(r.Context(), raw)
	if err != nil {
		logger.From(r.Context()).Debug("session token rejected", logger.Err(err))
		return nil
	}
	return &Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
}

// OptionalAuth adjunta el Principal si hay sesión válida y sigue igual si no.
// Los flujos de redirect deciden ellos mismos qué hacer sin sesión.
func OptionalAuth(v SessionVerifier, cookie string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := resolve(r, v, cookie); p != nil {
				ctx := WithPrincipal(r.Context(), p)
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.PrincipalID(p.ID)))
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth responde 401 JSON sin sesión válida.
func RequireAuth(v SessionVerifier, cookie string) Middleware {
	return func(next http.Handler) http.Handler {
		return OptionalAuth(v, cookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetPrincipal(r.Context()) == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
