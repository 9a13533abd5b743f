// Package social implementa el motor único de conexión a plataformas:
// connect (redirect de autorización), callback (canje, perfil, persistencia)
// y la gestión programática de integraciones y conexiones.
package social

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/cache"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/metrics"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/notify"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
)

// Service errors
var (
	ErrUnauthorized          = errors.New("no authenticated principal")
	ErrUnknownPlatform       = errors.New("unknown platform")
	ErrMissingIntegration    = errors.New("integration id required")
	ErrInvalidIntegration    = errors.New("integration not found for principal")
	ErrPlatformNotConfigured = errors.New("system credentials not configured for platform")
	ErrMissingCode           = errors.New("authorization code required")
	ErrMissingField          = errors.New("required field missing")
)

// DefaultIntegration selecciona la app del sistema en plataformas que la permiten.
const DefaultIntegration = "default"

// State payload keys.
const (
	statePrincipal   = "principalId"
	stateIntegration = "integrationId"
	statePlatform    = "platform"
	stateRedirect    = "redirect"
)

type Deps struct {
	Adapters     *providers.Registry
	Connections  repository.ConnectionRepository
	Integrations repository.IntegrationRepository
	State        *statecodec.Codec
	// Replay es opcional; sin cache no hay guard anti-replay.
	Replay   cache.Client
	Notifier notify.Notifier
	Metrics  *metrics.Metrics

	BaseURL       string
	DashboardPath string
	// SystemClient devuelve las credenciales <PLATFORM>_CLIENT_ID/_SECRET.
	SystemClient func(platform string) (providers.Client, bool)
}

type Services struct {
	Connect      ConnectService
	Callback     CallbackService
	Integrations IntegrationService
	Connections  ConnectionService
}

func NewServices(d Deps) Services {
	if d.Notifier == nil {
		d.Notifier = notify.Noop{}
	}
	if d.SystemClient == nil {
		d.SystemClient = func(string) (providers.Client, bool) { return providers.Client{}, false }
	}
	if d.DashboardPath == "" {
		d.DashboardPath = "/dashboard"
	}
	d.BaseURL = strings.TrimRight(d.BaseURL, "/")

	r := &resolver{deps: d}
	return Services{
		Connect:      &connectService{r: r},
		Callback:     &callbackService{r: r, now: time.Now},
		Integrations: &integrationService{deps: d},
		Connections:  &connectionService{deps: d},
	}
}

// resolver concentra lo que comparten connect y callback.
type resolver struct {
	deps Deps
}

// base elige el origen según la política de la plataforma.
func (r *resolver) base(a providers.Adapter, requestBase string) string {
	if a.RedirectPolicy() == providers.RedirectFromRequestHost && requestBase != "" {
		return strings.TrimRight(requestBase, "/")
	}
	return r.deps.BaseURL
}

func (r *resolver) redirectURI(a providers.Adapter, requestBase string) string {
	return r.base(a, requestBase) + "/callback/" + a.Platform()
}

// client resuelve las credenciales OAuth: integración propia del principal o
// la app del sistema. Devuelve la referencia que viaja en el state.
func (r *resolver) client(ctx context.Context, a providers.Adapter, principalID, integrationID string) (providers.Client, string, error) {
	integrationID = strings.TrimSpace(integrationID)
	if integrationID == "" || integrationID == DefaultIntegration {
		if !a.AllowsSystemDefault() {
			return providers.Client{}, "", ErrMissingIntegration
		}
		c, ok := r.deps.SystemClient(a.Platform())
		if !ok || c.ID == "" || c.Secret == "" {
			return providers.Client{}, "", ErrPlatformNotConfigured
		}
		return c, DefaultIntegration, nil
	}

	in, err := r.deps.Integrations.GetOwned(ctx, integrationID, principalID)
	if err != nil {
		if repository.IsNotFound(err) {
			return providers.Client{}, "", ErrInvalidIntegration
		}
		return providers.Client{}, "", err
	}
	if in.Platform != a.Platform() {
		return providers.Client{}, "", ErrInvalidIntegration
	}
	return providers.Client{ID: in.ClientID, Secret: in.ClientSecret}, in.ID, nil
}

// dashboardURL arma el destino final con los parámetros de resultado.
func (r *resolver) dashboardURL(base, path string, params url.Values) string {
	if path == "" {
		path = r.deps.DashboardPath
	}
	u := base + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}
