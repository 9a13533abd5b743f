package social

import (
	"net/http"

	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/social"
	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
)

type ConnectionsController struct {
	service svc.ConnectionService
}

func NewConnectionsController(service svc.ConnectionService) *ConnectionsController {
	return &ConnectionsController{service: service}
}

// List maneja GET /connections
func (c *ConnectionsController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.List(r.Context(), principalID(r))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListConnectionsResponse{Connections: items})
}

// Disconnect maneja DELETE /connections/{platform}
func (c *ConnectionsController) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Disconnect(r.Context(), principalID(r), platformParam(r)); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
