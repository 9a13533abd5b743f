package social

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// ConnectController maneja GET /connect/{platform}.
type ConnectController struct {
	service svc.ConnectService
}

func NewConnectController(service svc.ConnectService) *ConnectController {
	return &ConnectController{service: service}
}

func platformParam(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "platform")))
}

// Connect redirige al authorize de la plataforma. Es navegación de página
// completa: los errores vuelven al dashboard con ?error=, salvo plataforma
// desconocida.
func (c *ConnectController) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConnectController.Connect"))

	platform := platformParam(r)
	q := r.URL.Query()
	req := svc.ConnectRequest{
		Platform:       platform,
		IntegrationID:  q.Get("integrationId"),
		RequestBaseURL: helpers.RequestBaseURL(r),
		Redirect:       q.Get("redirect"),
	}
	if p := mw.GetPrincipal(ctx); p != nil {
		req.PrincipalID = p.ID
	}

	res, err := c.service.Start(ctx, req)
	if err != nil {
		if errors.Is(err, svc.ErrUnknownPlatform) {
			httperrors.WriteError(w, mapError(err))
			return
		}
		code := redirectCode(err)
		if code == "connect_failed" {
			log.Error("connect failed", logger.Platform(platform), logger.Err(err))
		}
		http.Redirect(w, r, c.service.ErrorRedirect(platform, req.RequestBaseURL, code), http.StatusFound)
		return
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}
