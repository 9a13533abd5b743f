package crossapp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/crossapp"
	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/crossapp"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// CrossAppController maneja el handshake de login federado.
type CrossAppController struct {
	service svc.Service
}

func NewCrossAppController(service svc.Service) *CrossAppController {
	return &CrossAppController{service: service}
}

func mapError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrMissingToken):
		return httperrors.ErrMissingField.WithDetail("idToken is required")
	case errors.Is(err, svc.ErrUnknownPartner):
		return httperrors.ErrInvalidProvider.WithDetail("unknown partner")
	case errors.Is(err, svc.ErrPartnerNotConfigured):
		return httperrors.ErrInvalidProvider.WithDetail("partner login is not configured")
	case errors.Is(err, svc.ErrInvalidCallback):
		return httperrors.ErrBadRequest.WithDetail("callback must be an absolute http(s) url")
	case errors.Is(err, svc.ErrBridgeNotConfigured):
		return httperrors.ErrConfiguration.WithDetail("credential bridge is not configured")
	case errors.Is(err, svc.ErrConfiguration):
		return httperrors.ErrConfiguration.WithDetail("partner project id is not configured")
	case errors.Is(err, svc.ErrInvalidPartnerToken):
		return httperrors.ErrInvalidPartnerToken.WithDetail("Invalid partner token: signature, issuer, audience or expiry check failed")
	case errors.Is(err, svc.ErrMissingEmail):
		return httperrors.ErrMissingEmail
	case errors.Is(err, svc.ErrBridge):
		return httperrors.ErrBridgeFailed.WithCause(err)
	default:
		return httperrors.ErrInternal.WithCause(err)
	}
}

// Providers maneja GET /cross-app/providers
func (c *CrossAppController) Providers(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.ProvidersResponse{Providers: c.service.Providers()})
}

// Initiate maneja GET /cross-app/initiate?provider=&redirect=&callback=
func (c *CrossAppController) Initiate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to, err := c.service.Initiate(r.Context(), svc.InitiateRequest{
		Provider: q.Get("provider"),
		Redirect: q.Get("redirect"),
		Callback: q.Get("callback"),
	})
	if err != nil {
		logger.From(r.Context()).Warn("cross-app initiate rejected",
			logger.Layer("controller"),
			logger.Partner(q.Get("provider")),
			logger.Err(err),
		)
		httperrors.WriteError(w, mapError(err))
		return
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// Verify maneja POST /cross-app/{partner}/verify
func (c *CrossAppController) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	partner := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "partner")))

	res, err := c.service.Verify(r.Context(), svc.VerifyRequest{
		Partner:         partner,
		IDToken:         req.IDToken,
		PartnerUserData: req.PartnerUserData,
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	out := dto.VerifyResponse{}
	for k, v := range res.PartnerUserData {
		out[k] = v
	}
	out[dto.FieldEmail] = res.Email
	out[dto.FieldPassword] = res.Secret
	out[dto.FieldUID] = res.PrincipalID
	out[dto.FieldOrgID] = res.OrgID
	out[dto.FieldProjectID] = res.ProjectID
	out[dto.FieldSourceLogin] = res.SourceLogin
	out[dto.FieldRedirect] = res.Redirect
	helpers.WriteJSON(w, http.StatusOK, out)
}
