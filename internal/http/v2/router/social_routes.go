package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
)

// registerSocialRoutes:
//
//	GET    /connect/{platform}     redirect (sesión opcional: sin sesión vuelve con ?error=unauthorized)
//	GET    /callback/{platform}    redirect
//	GET    /integrations           JSON, requiere sesión
//	POST   /integrations
//	DELETE /integrations/{id}
//	GET    /connections
//	DELETE /connections/{platform}
func registerSocialRoutes(r chi.Router, deps Deps) {
	if deps.Controllers == nil || deps.Controllers.Social == nil {
		return
	}
	c := deps.Controllers.Social

	r.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuth(deps.Session, deps.SessionCookie), mw.WithNoStore())
		r.Get("/connect/{platform}", c.Connect.Connect)
		r.Get("/callback/{platform}", c.Callback.Callback)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(deps.Session, deps.SessionCookie), mw.WithNoStore())
		r.Get("/integrations", c.Integrations.List)
		r.Post("/integrations", c.Integrations.Save)
		r.Delete("/integrations/{id}", c.Integrations.Delete)
		r.Get("/connections", c.Connections.List)
		r.Delete("/connections/{platform}", c.Connections.Disconnect)
	})
}
