// Package server arma el handler HTTP V2 con todas las dependencias.
package server

import (
	"context"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/bridge"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/cache"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/config"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/controllers"
	mw "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/middlewares"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/facebook"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/instagram"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/linkedin"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/tiktok"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/providers/youtube"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/router"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/crossapp"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/health"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/identity"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/metrics"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/notify"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/oauth/idtoken"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/partners"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/rate"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/password"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/secretbox"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store/pg"
)

// App es el resultado del wiring: handler listo y cleanup.
type App struct {
	Handler http.Handler
	Metrics *metrics.Metrics
	Store   *store.Repositories

	closers []func()
}

// Close libera recursos en orden inverso de creación.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Build instancia todo a partir de la config ya validada.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.From(ctx).With(logger.Component("wiring"))
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	// 1. Métricas
	m := metrics.New(nil)
	app.Metrics = m

	httpClient := &http.Client{Timeout: cfg.HTTPClient.Timeout}

	// 2. Secretbox (client secrets de integraciones en reposo)
	var box *secretbox.Box
	if cfg.Security.SecretboxKey != "" {
		b, err := secretbox.New(cfg.Security.SecretboxKey)
		if err != nil {
			return fail(fmt.Errorf("secretbox: %w", err))
		}
		box = b
	} else if cfg.Storage.Driver == "postgres" {
		log.Warn("SECRETBOX_MASTER_KEY not set: integration secrets stored in plain text")
	}

	// 3. Store
	repos, err := store.Open(ctx, store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		PG: pg.Options{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.Storage.Postgres.MaxConnLifetime,
		},
		AutoMigrate: cfg.Storage.AutoMigrate,
	}, box)
	if err != nil {
		return fail(err)
	}
	app.Store = repos
	app.closers = append(app.closers, repos.Close)

	// 4. Cache + rate limiter (comparten cliente Redis)
	var (
		replay  cache.Client
		limiter rate.Limiter
	)
	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		replay = cache.NewRedisFromClient(client, cfg.Cache.Redis.Prefix)
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.MaxRequests, cfg.Rate.Window)
		}
	default:
		replay = cache.NewMemory(cfg.Cache.Redis.Prefix, cfg.Cache.Memory.DefaultTTL)
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
		}
	}
	app.closers = append(app.closers, func() { _ = replay.Close() })

	// 5. Identidad propia + Credential Bridge
	backend, err := identityBackend(cfg, repos, httpClient)
	if err != nil {
		return fail(err)
	}
	var br *bridge.Bridge
	if cfg.Bridge.Key != "" {
		if br, err = bridge.New([]byte(cfg.Bridge.Key), backend); err != nil {
			return fail(err)
		}
	} else {
		log.Warn("CREDENTIAL_BRIDGE_KEY not set: cross-app verify will fail")
	}

	// 6. Token Verifier: un KeyCache para el dominio propio y todos los partners
	keys := idtoken.NewKeyCache(&idtoken.HTTPFetcher{Client: httpClient}, idtoken.WithFetchObserver(m.KeyFetch))
	var session mw.SessionVerifier
	if cfg.Identity.ProjectID != "" {
		v, err := idtoken.NewVerifier(idtoken.FirebaseDomain("self", cfg.Identity.ProjectID), keys)
		if err != nil {
			return fail(err)
		}
		session = v
	} else {
		log.Warn("identity project id not set: every request is anonymous")
	}

	// 7. Notificaciones
	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTP.Host != "" {
		notifier = notify.NewMailer(notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			TLSMode:  cfg.SMTP.TLSMode,
		}))
	}

	// 8. Services → controllers → router
	state := statecodec.New([]byte(cfg.State.Secret), cfg.State.TTL)
	if !state.Signed() {
		log.Warn("OAUTH_STATE_SECRET not set: state is unsigned and has no replay guard")
	}

	extra := make([]partners.Descriptor, 0, len(cfg.Partners))
	for _, p := range cfg.Partners {
		extra = append(extra, partners.Descriptor{ID: p.ID, Name: p.Name, PrimaryColor: p.PrimaryColor, SecondaryColor: p.SecondaryColor})
	}

	svcs := services.New(services.Deps{
		Social: social.Deps{
			Adapters:      platformAdapters(httpClient),
			Connections:   repos.Connections,
			Integrations:  repos.Integrations,
			State:         state,
			Replay:        replay,
			Notifier:      notifier,
			Metrics:       m,
			BaseURL:       cfg.App.BaseURL,
			DashboardPath: cfg.App.DashboardPath,
			SystemClient: func(platform string) (providers.Client, bool) {
				c, ok := cfg.PlatformCreds(platform)
				return providers.Client{ID: c.ClientID, Secret: c.ClientSecret}, ok
			},
		},
		CrossApp: crossapp.Deps{
			Partners:   partners.New(extra),
			Keys:       keys,
			Bridge:     br,
			Principals: repos.Principals,
			State:      state,
			Metrics:    m,
			BaseURL:    cfg.App.BaseURL,
			AppID:      cfg.App.AppID,
		},
		Health: health.Deps{
			StoreCheck:    repos.Ping,
			CacheCheck:    replay.Ping,
			BridgeEnabled: br != nil,
		},
	})

	app.Handler = router.New(router.Deps{
		Controllers:   controllers.New(svcs),
		Session:       session,
		SessionCookie: cfg.Identity.SessionCookie,
		RateLimiter:   limiter,
		Metrics:       m,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
	})
	return app, nil
}

func platformAdapters(hc *http.Client) *providers.Registry {
	return providers.NewRegistry(
		facebook.New(hc),
		instagram.New(hc),
		linkedin.New(hc),
		tiktok.New(hc),
		youtube.New(hc),
	)
}

func identityBackend(cfg *config.Config, repos *store.Repositories, hc *http.Client) (identity.Backend, error) {
	switch cfg.Identity.Driver {
	case "toolkit":
		return identity.NewToolkit(cfg.Identity.ToolkitURL, cfg.Identity.APIKey, hc), nil
	case "postgres":
		if repos.PG == nil {
			return nil, fmt.Errorf("identity driver postgres requires the postgres store")
		}
		return repos.PG.Identity(password.Default), nil
	default:
		return identity.NewMemory(), nil
	}
}
