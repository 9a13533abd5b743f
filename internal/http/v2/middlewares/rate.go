package middlewares

import (
	"net/http"
	"strconv"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/rate"
)

type RateKeyFunc func(r *http.Request) string

// IPRateKey agrupa por IP y ruta.
func IPRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// WithRateLimit responde 429 cuando la key agota su ventana. Si el limiter
// falla se deja pasar el request.
func WithRateLimit(l rate.Limiter, key RateKeyFunc) Middleware {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if key == nil {
		key = IPRateKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
