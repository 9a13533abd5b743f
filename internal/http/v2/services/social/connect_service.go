package social

import (
	"context"
	"net/url"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
)

type ConnectRequest struct {
	Platform      string
	PrincipalID   string
	IntegrationID string
	// RequestBaseURL es scheme://host del request (X-Forwarded-* ya aplicados).
	RequestBaseURL string
	// Redirect opcional: path relativo al que volver tras el callback.
	Redirect string
}

type ConnectResult struct {
	RedirectURL string
}

// ConnectService arma el redirect de autorización de una plataforma.
type ConnectService interface {
	Start(ctx context.Context, req ConnectRequest) (*ConnectResult, error)
	// ErrorRedirect es el destino de navegador para un error de Start.
	ErrorRedirect(platform, requestBase, code string) string
}

type connectService struct {
	r *resolver
}

func (s *connectService) Start(ctx context.Context, req ConnectRequest) (*ConnectResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("social.connect"),
		logger.Platform(req.Platform),
	)

	if req.PrincipalID == "" {
		return nil, ErrUnauthorized
	}
	a, ok := s.r.deps.Adapters.Get(req.Platform)
	if !ok {
		return nil, ErrUnknownPlatform
	}

	client, ref, err := s.r.client(ctx, a, req.PrincipalID, req.IntegrationID)
	if err != nil {
		log.Warn("connect rejected", logger.IntegrationID(req.IntegrationID), logger.Err(err))
		return nil, err
	}

	payload := map[string]any{
		statePrincipal:   req.PrincipalID,
		stateIntegration: ref,
		statePlatform:    a.Platform(),
	}
	if p := statecodec.SafeRedirect(req.Redirect); p != "" {
		payload[stateRedirect] = p
	}
	state, err := s.r.deps.State.Encode(payload)
	if err != nil {
		return nil, err
	}

	s.r.deps.Metrics.ConnectStarted(a.Platform())
	log.Debug("authorization redirect issued", logger.IntegrationID(ref))
	return &ConnectResult{RedirectURL: a.AuthorizeURL(client, s.r.redirectURI(a, req.RequestBaseURL), state)}, nil
}

func (s *connectService) ErrorRedirect(platform, requestBase, code string) string {
	base := s.r.deps.BaseURL
	if a, ok := s.r.deps.Adapters.Get(platform); ok {
		base = s.r.base(a, requestBase)
	}
	q := url.Values{"error": {code}}
	if platform != "" {
		q.Set("platform", platform)
	}
	return s.r.dashboardURL(base, "", q)
}
