// Package services es el composition root de los services HTTP V2.
//
//	deps := services.Deps{...}      ← dependencias externas (store, cache, bridge)
//	svcs := services.New(deps)      ← todos los services
//	ctrls := controllers.New(svcs)  ← controllers con services inyectados
//	router.New(router.Deps{...})    ← rutas
package services

import (
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/crossapp"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/health"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
)

type Deps struct {
	Social   social.Deps   // Conexión a plataformas (connect, callback, integraciones)
	CrossApp crossapp.Deps // Login federado con partners
	Health   health.Deps   // Probes de /readyz
}

type Services struct {
	Social   social.Services
	CrossApp crossapp.Service
	Health   health.Services
}

func New(d Deps) *Services {
	return &Services{
		Social:   social.NewServices(d.Social),
		CrossApp: crossapp.New(d.CrossApp),
		Health:   health.NewServices(d.Health),
	}
}
