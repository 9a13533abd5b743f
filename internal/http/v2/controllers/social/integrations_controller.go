package social

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/social"
	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// IntegrationsController expone la gestión de apps OAuth propias.
// Requiere sesión (RequireAuth en el router).
type IntegrationsController struct {
	service svc.IntegrationService
}

func NewIntegrationsController(service svc.IntegrationService) *IntegrationsController {
	return &IntegrationsController{service: service}
}

func principalID(r *http.Request) string {
	if p := mw.GetPrincipal(r.Context()); p != nil {
		return p.ID
	}
	return ""
}

// List maneja GET /integrations?platform=
func (c *IntegrationsController) List(w http.ResponseWriter, r *http.Request) {
	platform := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("platform")))
	items, err := c.service.List(r.Context(), principalID(r), platform)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListIntegrationsResponse{Integrations: items})
}

// Save maneja POST /integrations
func (c *IntegrationsController) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveIntegrationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	saved, err := c.service.Save(r.Context(), principalID(r), req)
	if err != nil {
		logger.From(r.Context()).Warn("integration save failed", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, saved)
}

// Delete maneja DELETE /integrations/{id}
func (c *IntegrationsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), principalID(r), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
