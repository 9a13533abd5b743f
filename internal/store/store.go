// Package store arma la capa de acceso a datos según storage.driver:
// postgres (pgxpool + migraciones embebidas) o memory.
package store

import (
	"context"
	"fmt"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/secretbox"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store/memory"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store/pg"
	migrations "github.com/nitheshb/caco-Marketing-tool-sub001/migrations/postgres"
)

type Config struct {
	Driver string // postgres | memory
	DSN    string
	PG     pg.Options
	// AutoMigrate aplica migraciones pendientes al abrir.
	AutoMigrate bool
}

// Repositories es lo que consumen los services.
type Repositories struct {
	Connections  repository.ConnectionRepository
	Integrations repository.IntegrationRepository
	Principals   repository.PrincipalRepository

	// PG es nil con driver memory.
	PG *pg.Store
}

func Open(ctx context.Context, cfg Config, box *secretbox.Box) (*Repositories, error) {
	switch cfg.Driver {
	case "memory", "":
		return &Repositories{
			Connections:  memory.NewConnections(),
			Integrations: memory.NewIntegrations(),
			Principals:   memory.NewPrincipals(),
		}, nil
	case "postgres":
		s, err := pg.Open(ctx, cfg.DSN, cfg.PG, box)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		if cfg.AutoMigrate {
			if _, err := Migrator().Run(ctx, s); err != nil {
				s.Close()
				return nil, fmt.Errorf("store: migrate: %w", err)
			}
		}
		return &Repositories{
			Connections:  s.Connections(),
			Integrations: s.Integrations(),
			Principals:   s.Principals(),
			PG:           s,
		}, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Migrator devuelve el migrador sobre el schema embebido.
func Migrator() *pg.Migrator {
	return pg.NewMigrator(migrations.FS, migrations.Dir)
}

func (r *Repositories) Ping(ctx context.Context) error {
	if r.PG == nil {
		return nil
	}
	return r.PG.Ping(ctx)
}

func (r *Repositories) Close() {
	if r.PG != nil {
		r.PG.Close()
	}
}
