package social

import (
	"net/http"

	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/helpers"
	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
)

// CallbackController maneja GET /callback/{platform}.
type CallbackController struct {
	service svc.CallbackService
}

func NewCallbackController(service svc.CallbackService) *CallbackController {
	return &CallbackController{service: service}
}

func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	req := svc.CallbackRequest{
		Platform:       platformParam(r),
		Code:           q.Get("code"),
		State:          q.Get("state"),
		ProviderError:  q.Get("error"),
		RequestBaseURL: helpers.RequestBaseURL(r),
	}
	if p := mw.GetPrincipal(ctx); p != nil {
		req.SessionPrincipalID, req.SessionEmail, req.SessionName = p.ID, p.Email, p.Name
	}

	res, err := c.service.Callback(ctx, req)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}
