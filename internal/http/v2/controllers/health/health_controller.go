// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/health"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: NewHealthController(s.Health)}
}

// Healthz maneja GET /healthz (liveness: el proceso responde).
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	response := c.service.Check(ctx)

	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}
	if response.Commit != "" {
		w.Header().Set("X-Service-Commit", response.Commit)
	}

	// Status code según estado
	statusCode := http.StatusOK
	if response.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}

	log.Debug("health check completed",
		logger.String("status", response.Status),
		logger.Int("components_count", len(response.Components)),
	)
	helpers.WriteJSON(w, statusCode, response)
}
