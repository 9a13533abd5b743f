// Package pg implementa los repositorios sobre Postgres (pgxpool).
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/secretbox"
)

type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type Store struct {
	pool *pgxpool.Pool
	box  *secretbox.Box
}

// Open crea el pool. El ping inicial no es fatal: la app arranca aunque la DB
// esté caída y /readyz lo refleja.
func Open(ctx context.Context, dsn string, opts Options, box *secretbox.Box) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		pcfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = opts.MaxConnLifetime
		pcfg.MaxConnIdleTime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	log := logger.From(ctx).With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		log.Info("pg pool ready", zap.Int32("max_conns", pcfg.MaxConns))
	}
	return &Store{pool: pool, box: box}, nil
}

// Pool expone el pool para migraciones.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Connections() repository.ConnectionRepository {
	return &connectionRepo{pool: s.pool}
}

func (s *Store) Integrations() repository.IntegrationRepository {
	return &integrationRepo{pool: s.pool, box: s.box}
}

func (s *Store) Principals() repository.PrincipalRepository {
	return &principalRepo{pool: s.pool}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
