// Package crossapp implementa el login federado con aplicaciones partner:
// el initiator redirige al login del partner y el verifier canjea el ID token
// del partner por credenciales locales vía el Credential Bridge.
package crossapp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/bridge"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/metrics"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/partners"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
)

// Service errors
var (
	ErrMissingToken         = errors.New("id token required")
	ErrUnknownPartner       = errors.New("unknown partner")
	ErrPartnerNotConfigured = errors.New("partner login not configured")
	ErrConfiguration        = errors.New("partner trust domain not configured")
	ErrInvalidPartnerToken  = errors.New("invalid partner token")
	ErrMissingEmail         = errors.New("partner token without email")
	ErrBridge               = errors.New("credential bridge failed")
	ErrInvalidCallback      = errors.New("callback must be an absolute http(s) url")

	// ErrBridgeNotConfigured es un ErrConfiguration: falta CREDENTIAL_BRIDGE_KEY.
	ErrBridgeNotConfigured = fmt.Errorf("%w: credential bridge key not set", ErrConfiguration)
)

const (
	DefaultRedirect     = "/dashboard"
	DefaultCallbackPath = "/auth/cross-app/callback"
	partnerLoginPath    = "/partner-login"
)

type Deps struct {
	Partners   *partners.Registry
	Keys       *idtoken.KeyCache
	Bridge     *bridge.Bridge
	Principals repository.PrincipalRepository
	State      *statecodec.Codec
	Metrics    *metrics.Metrics

	BaseURL string
	AppID   string
	// Domain arma el trust domain de un partner; default Firebase securetoken.
	Domain func(p partners.Partner) idtoken.TrustDomain
}

type InitiateRequest struct {
	Provider string
	Redirect string
	Callback string
}

type VerifyRequest struct {
	Partner         string
	IDToken         string
	PartnerUserData map[string]any
}

// VerifyResult son las credenciales para que el cliente abra su sesión local.
// Este servicio nunca emite la sesión.
type VerifyResult struct {
	Email           string
	Secret          string
	PrincipalID     string
	Created         bool
	OrgID           string
	ProjectID       string
	SourceLogin     string
	Redirect        string
	PartnerUserData map[string]any
}

type Service interface {
	Providers() []partners.Descriptor
	Initiate(ctx context.Context, req InitiateRequest) (string, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

type service struct {
	deps Deps

	mu        sync.Mutex
	verifiers map[string]*idtoken.Verifier
}

func New(d Deps) Service {
	if d.Domain == nil {
		d.Domain = PartnerDomain
	}
	if d.State == nil {
		d.State = statecodec.New(nil, 0)
	}
	d.BaseURL = strings.TrimRight(d.BaseURL, "/")
	return &service{deps: d, verifiers: map[string]*idtoken.Verifier{}}
}

// PartnerDomain: cada partner es su propio proyecto Firebase.
func PartnerDomain(p partners.Partner) idtoken.TrustDomain {
	return idtoken.FirebaseDomain("partner:"+p.ID, p.ProjectID)
}

func (s *service) Providers() []partners.Descriptor {
	return s.deps.Partners.List()
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (string, error) {
	p, ok := s.deps.Partners.Resolve(req.Provider)
	if !ok {
		return "", ErrUnknownPartner
	}
	if !p.LoginConfigured() {
		return "", ErrPartnerNotConfigured
	}

	callback := strings.TrimSpace(req.Callback)
	if callback == "" {
		callback = s.deps.BaseURL + DefaultCallbackPath
	} else if !absoluteHTTP(callback) {
		return "", ErrInvalidCallback
	}
	redirect := statecodec.SafeRedirect(req.Redirect)
	if redirect == "" {
		redirect = DefaultRedirect
	}

	// Con shared secret el partner puede verificar el state que le mandamos.
	codec := s.deps.State
	if p.SharedSecret != "" {
		codec = codec.WithKey([]byte(p.SharedSecret))
	}
	state, err := codec.Encode(map[string]any{"provider": p.ID, "redirect": redirect})
	if err != nil {
		return "", err
	}
	q := url.Values{
		"app_id":       {s.deps.AppID},
		"redirect_uri": {callback},
		"state":        {state},
	}
	logger.From(ctx).Debug("cross-app login initiated",
		logger.Layer("service"),
		logger.Component("crossapp"),
		logger.Partner(p.ID),
	)
	return p.AppURL + partnerLoginPath + "?" + q.Encode(), nil
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// verifier crea el verifier del partner la primera vez; todos comparten el
// KeyCache. La clave incluye el project id porque sale del entorno.
func (s *service) verifier(p partners.Partner) (*idtoken.Verifier, error) {
	key := p.ID + "|" + p.ProjectID
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.verifiers[key]; ok {
		return v, nil
	}
	v, err := idtoken.NewVerifier(s.deps.Domain(p), s.deps.Keys)
	if err != nil {
		return nil, err
	}
	s.verifiers[key] = v
	return v, nil
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("crossapp"),
		logger.Op("Verify"),
		logger.Partner(req.Partner),
	)
	result := func(r string) { s.deps.Metrics.CrossAppVerify(req.Partner, r) }

	if strings.TrimSpace(req.IDToken) == "" {
		result("missing_token")
		return nil, ErrMissingToken
	}
	p, ok := s.deps.Partners.Resolve(req.Partner)
	if !ok {
		result("unknown_partner")
		return nil, ErrUnknownPartner
	}
	if !p.VerifyConfigured() {
		log.Error("partner project id not configured", logger.String("env", "NEXT_PUBLIC_"+partners.EnvPrefix(p.ID)+"_FIREBASE_PROJECT_ID"))
		result("configuration")
		return nil, ErrConfiguration
	}
	if s.deps.Bridge == nil {
		log.Error("credential bridge not configured", logger.String("env", "CREDENTIAL_BRIDGE_KEY"))
		result("configuration")
		return nil, ErrBridgeNotConfigured
	}
	v, err := s.verifier(p)
	if err != nil {
		log.Error("partner trust domain invalid", logger.Err(err))
		result("configuration")
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	claims, err := v.Verify(ctx, req.IDToken)
	if err != nil {
		log.Warn("partner token rejected", logger.Err(err))
		result("invalid_token")
		return nil, fmt.Errorf("%w: %v", ErrInvalidPartnerToken, err)
	}
	email := bridge.NormalizeEmail(claims.Email)
	if email == "" {
		result("missing_email")
		return nil, ErrMissingEmail
	}

	data := req.PartnerUserData
	if data == nil {
		data = map[string]any{}
	}
	name := claims.Name
	if name == "" {
		name = firstString(data, "displayName", "name")
	}

	res, err := s.deps.Bridge.EnsurePrincipal(ctx, email, name)
	if err != nil {
		log.Error("credential bridge failed", logger.Email(email), logger.Err(err))
		result("bridge_error")
		return nil, fmt.Errorf("%w: %v", ErrBridge, err)
	}
	s.deps.Metrics.Bridge(res.Created)

	out := &VerifyResult{
		Email:           email,
		Secret:          res.Secret,
		PrincipalID:     res.PrincipalID,
		Created:         res.Created,
		OrgID:           firstString(data, "orgId", "org_id"),
		ProjectID:       firstString(data, "projectId", "project_id"),
		SourceLogin:     p.ID,
		Redirect:        DefaultRedirect,
		PartnerUserData: data,
	}

	if s.deps.Principals != nil {
		err := s.deps.Principals.RecordLogin(ctx, repository.PrincipalLogin{
			PrincipalID: out.PrincipalID,
			Email:       email,
			DisplayName: name,
			SourceLogin: out.SourceLogin,
			OrgID:       out.OrgID,
			ProjectID:   out.ProjectID,
			At:          time.Now().UTC(),
		})
		if err != nil {
			log.Warn("login metadata not recorded", logger.PrincipalID(out.PrincipalID), logger.Err(err))
		}
	}

	result("ok")
	log.Info("cross-app login verified", logger.PrincipalID(out.PrincipalID), logger.Bool("created", res.Created))
	return out, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
