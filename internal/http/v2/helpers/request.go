package helpers

import (
	"net/http"
	"strings"
)

// RequestBaseURL arma scheme://host del request tal como lo ve el navegador,
// respetando X-Forwarded-Proto / X-Forwarded-Host del proxy.
func RequestBaseURL(r *http.Request) string {
	host := firstHeaderValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}

	scheme := firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil && (strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")) {
			scheme = "http"
		}
	}
	return strings.ToLower(scheme) + "://" + host
}

// firstHeaderValue: "a, b" -> "a" (cadena de proxies).
func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
