package social

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/notify"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
)

// Códigos de error que viajan en ?error= hacia el dashboard.
const (
	CodeAccessDenied       = "access_denied"
	CodeInvalidState       = "invalid_state"
	CodeStateReplayed      = "state_replayed"
	CodeStateMismatch      = "state_mismatch"
	CodePlatformMismatch   = "platform_mismatch"
	CodeInvalidIntegration = "invalid_integration"
	CodeTokenExchange      = "token_exchange_failed"
	CodeLongLivedExchange  = "long_lived_exchange_failed"
	CodeProfileFetch       = "profile_fetch_failed"
	CodeNoInstagramLinked  = "no_instagram_linked"
	CodeSaveFailed         = "save_failed"
)

const replayKeyPrefix = "oauth:state:"

type CallbackRequest struct {
	Platform      string
	Code          string
	State         string
	ProviderError string
	// RequestBaseURL es scheme://host del request.
	RequestBaseURL string

	// Sesión propia, si el navegador la trae. Vacío = sin sesión.
	SessionPrincipalID string
	SessionEmail       string
	SessionName        string
}

type CallbackResult struct {
	RedirectURL string
	// ErrorCode vacío = conectado.
	ErrorCode string
}

// CallbackService completa el flujo: siempre responde con un redirect salvo
// ErrMissingCode y ErrUnknownPlatform.
type CallbackService interface {
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

type callbackService struct {
	r   *resolver
	now func() time.Time
}

func (s *callbackService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("social.callback"),
		logger.Platform(req.Platform),
	)

	a, ok := s.r.deps.Adapters.Get(req.Platform)
	if !ok {
		return nil, ErrUnknownPlatform
	}
	base := s.r.base(a, req.RequestBaseURL)

	fail := func(stage, code string, err error) (*CallbackResult, error) {
		log.Warn("callback failed", logger.Stage(stage), logger.String("code", code), logger.Err(err))
		s.r.deps.Metrics.Callback(a.Platform(), code)
		q := url.Values{"error": {code}, "platform": {a.Platform()}}
		return &CallbackResult{RedirectURL: s.r.dashboardURL(base, "", q), ErrorCode: code}, nil
	}

	if req.ProviderError != "" {
		return fail("authorize", CodeAccessDenied, errors.New(req.ProviderError))
	}
	if req.Code == "" {
		return nil, ErrMissingCode
	}

	decoded, err := s.r.deps.State.DecodeFull(req.State)
	if err != nil {
		return fail("state", CodeInvalidState, err)
	}
	st := decoded.Payload
	principalID := statecodec.String(st, statePrincipal)
	if principalID == "" {
		return fail("state", CodeInvalidState, errors.New("state without principal"))
	}
	if p := statecodec.String(st, statePlatform); p != "" && p != a.Platform() {
		return fail("state", CodePlatformMismatch, errors.New("state issued for "+p))
	}
	if req.SessionPrincipalID != "" && req.SessionPrincipalID != principalID {
		return fail("state", CodeStateMismatch, errors.New("state principal differs from session"))
	}
	if replayed, err := s.claimNonce(ctx, decoded); err != nil {
		log.Warn("state replay guard unavailable", logger.Err(err))
	} else if replayed {
		return fail("state", CodeStateReplayed, errors.New("state nonce already used"))
	}

	client, ref, err := s.r.client(ctx, a, principalID, statecodec.String(st, stateIntegration))
	if err != nil {
		return fail("integration", CodeInvalidIntegration, err)
	}

	redirectURI := s.r.redirectURI(a, req.RequestBaseURL)
	tok, err := a.Exchange(ctx, client, redirectURI, req.Code)
	if err != nil {
		return fail("exchange", CodeTokenExchange, err)
	}
	if up, ok := a.(providers.LongLivedUpgrader); ok {
		if tok, err = up.UpgradeToken(ctx, client, tok); err != nil {
			return fail("long_lived", CodeLongLivedExchange, err)
		}
	}

	profile, err := a.Profile(ctx, client, tok)
	if errors.Is(err, providers.ErrNoInstagramLinked) {
		return fail("profile", CodeNoInstagramLinked, err)
	}
	if err != nil {
		return fail("profile", CodeProfileFetch, err)
	}
	if profile.ID == "" {
		profile.ID = tok.Subject
	}

	conn := repository.SocialConnection{
		PrincipalID:  principalID,
		Platform:     a.Platform(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
		ProfileID:    profile.ID,
		ProfileName:  profile.Name,
		ProfileImage: profile.Image,
	}
	if ref != DefaultIntegration {
		conn.IntegrationID = ref
	}
	inserted, err := s.r.deps.Connections.Upsert(ctx, conn)
	if err != nil {
		return fail("save", CodeSaveFailed, err)
	}

	dest := s.r.dashboardURL(base, statecodec.SafeRedirect(statecodec.String(st, stateRedirect)), url.Values{"connected": {a.Platform()}})
	if inserted {
		ev := notify.ConnectionEvent{
			Platform:     a.Platform(),
			ProfileName:  profile.Name,
			DashboardURL: s.r.dashboardURL(base, "", nil),
		}
		if req.SessionPrincipalID == principalID {
			ev.Email, ev.DisplayName = req.SessionEmail, req.SessionName
		}
		if err := s.r.deps.Notifier.ConnectionCreated(ctx, ev); err != nil {
			log.Warn("connection notice failed", logger.Err(err))
		}
	}

	s.r.deps.Metrics.Callback(a.Platform(), "connected")
	log.Info("platform connected",
		logger.PrincipalID(principalID),
		logger.Bool("inserted", inserted),
		logger.IntegrationID(conn.IntegrationID),
	)
	return &CallbackResult{RedirectURL: dest}, nil
}

// claimNonce marca el nonce del state como usado. Sin nonce (modo sin firma)
// o sin cache no hay guard.
func (s *callbackService) claimNonce(ctx context.Context, d *statecodec.Decoded) (replayed bool, err error) {
	if d.Nonce == "" || s.r.deps.Replay == nil {
		return false, nil
	}
	ttl := s.r.deps.State.TTL()
	if !d.ExpiresAt.IsZero() {
		if left := d.ExpiresAt.Sub(s.now()); left > 0 {
			ttl = left + time.Minute
		}
	}
	ok, err := s.r.deps.Replay.SetNX(ctx, replayKeyPrefix+d.Nonce, "1", ttl)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
