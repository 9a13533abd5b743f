package middlewares

import (
	"net/http"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// WithRecover convierte un panic en 500 JSON.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered", logger.Op("recover"), logger.Any("panic", rec))
					errors.WriteError(w, errors.ErrInternal.WithDetail("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
