// Package router contains the V2 route aggregator.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/controllers"
	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/metrics"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/rate"
)

// Deps contains all dependencies for the V2 router.
type Deps struct {
	Controllers *controllers.Controllers

	// Session resuelve el principal de la sesión propia (id token).
	Session       mw.SessionVerifier
	SessionCookie string

	// Middlewares
	RateLimiter rate.Limiter // Optional: solo cross-app verify
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// New arma el handler completo. Infra común para todo lo que no es health:
// request id, recover, logging + métricas, headers de seguridad y CORS.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, deps)

	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithRequestID(),
			mw.WithRecover(),
			mw.WithLogging(deps.Metrics),
			mw.WithSecurityHeaders(),
			mw.WithCORS(deps.CORSOrigins),
		)
		registerSocialRoutes(r, deps)
		registerCrossAppRoutes(r, deps)
	})
	return r
}
