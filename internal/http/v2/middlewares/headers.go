package middlewares

import (
	"net/http"
	"strings"
)

// WithNoStore marca la respuesta como no cacheable (tokens, secretos de bridge).
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Pragma", "no-cache")
			next.ServeHTTP(w, r)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// WithSecurityHeaders: cabeceras por defecto para una API que además responde redirects.
func WithSecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if isHTTPS(r) {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
