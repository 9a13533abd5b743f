package middlewares

import (
	"net/http"
	"strings"
)

// WithCORS habilita CORS con credenciales para los orígenes permitidos ("*" = cualquiera).
func WithCORS(allowed []string) Middleware {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	alist := make([]string, 0, len(allowed))
	for _, v := range allowed {
		if v = trim(v); v != "" {
			alist = append(alist, v)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := trim(r.Header.Get("Origin"))
			allowedOrigin := ""
			for _, a := range alist {
				if origin != "" && (a == "*" || strings.EqualFold(origin, a)) {
					allowedOrigin = origin
					break
				}
			}

			w.Header().Add("Vary", "Origin")
			if allowedOrigin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				h.Set("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Remaining, Retry-After, Location")
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
