package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
)

// registerCrossAppRoutes: públicas; verify devuelve credenciales, así que va
// con rate limit por IP y no-store.
func registerCrossAppRoutes(r chi.Router, deps Deps) {
	if deps.Controllers == nil || deps.Controllers.CrossApp == nil {
		return
	}
	c := deps.Controllers.CrossApp.CrossApp

	r.Route("/cross-app", func(r chi.Router) {
		r.Get("/providers", c.Providers)
		r.Get("/initiate", c.Initiate)
		r.With(
			mw.WithRateLimit(deps.RateLimiter, mw.IPRateKey),
			mw.WithNoStore(),
		).Post("/{partner}/verify", c.Verify)
	})
}
