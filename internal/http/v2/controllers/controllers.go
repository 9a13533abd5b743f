// Package controllers agrupa todos los controllers HTTP V2.
// Este es el "composition root" de controllers.
//
//  1. CREAR EL SUB-PAQUETE:
//     internal/http/v2/controllers/{dominio}/
//     - {nombre}_controller.go  → implementación del controller
//     - controllers.go          → aggregator del dominio
//
//  2. AGREGAR AL AGGREGATOR PRINCIPAL (este archivo).
//
//  3. USO EN server/wiring.go:
//
//	svcs := services.New(deps)
//	ctrls := controllers.New(svcs)
//	handler := router.New(router.Deps{Controllers: ctrls, ...})
package controllers

import (
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/controllers/crossapp"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/controllers/health"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/controllers/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services"
)

// Controllers agrupa todos los sub-controllers por dominio.
type Controllers struct {
	Social   *social.Controllers   // Connect, callback, integraciones, conexiones
	CrossApp *crossapp.Controllers // Login federado con partners
	Health   *health.Controllers   // Health checks (healthz, readyz)
}

// New crea el agregador de controllers con todos los services inyectados.
// Este es el único lugar donde se instancian los controllers.
func New(svc *services.Services) *Controllers {
	return &Controllers{
		Social:   social.NewControllers(svc.Social),
		CrossApp: crossapp.NewControllers(svc.CrossApp),
		Health:   health.NewControllers(svc.Health),
	}
}
