package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
)

// registerHealthRoutes registra rutas de health check y /metrics.
// Sin auth y sin logging (muy frecuentes).
func registerHealthRoutes(r chi.Router, deps Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.WithRecover(), mw.WithRequestID())

		if deps.Controllers != nil && deps.Controllers.Health != nil {
			c := deps.Controllers.Health.Health
			r.Get("/healthz", c.Healthz)
			r.Get("/readyz", c.Readyz)
		}
		r.Method("GET", "/metrics", deps.Metrics.Handler())
	})
}
