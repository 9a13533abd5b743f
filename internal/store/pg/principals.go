package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/identity"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/password"
)

type principalRepo struct{ pool *pgxpool.Pool }

func (r *principalRepo) RecordLogin(ctx context.Context, in repository.PrincipalLogin) error {
	const query = `
		INSERT INTO principal_logins (principal_id, email, display_name, source_login, org_id, project_id, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (principal_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			source_login = EXCLUDED.source_login,
			org_id = EXCLUDED.org_id,
			project_id = EXCLUDED.project_id,
			last_login = EXCLUDED.last_login
	`
	_, err := r.pool.Exec(ctx, query, in.PrincipalID, in.Email, in.DisplayName, in.SourceLogin, in.OrgID, in.ProjectID, in.At)
	return err
}

func (r *principalRepo) GetLogin(ctx context.Context, principalID string) (*repository.PrincipalLogin, error) {
	const query = `
		SELECT principal_id, email, display_name, source_login, org_id, project_id, last_login
		FROM principal_logins WHERE principal_id = $1
	`
	var out repository.PrincipalLogin
	err := r.pool.QueryRow(ctx, query, principalID).Scan(
		&out.PrincipalID, &out.Email, &out.DisplayName, &out.SourceLogin, &out.OrgID, &out.ProjectID, &out.At,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Identity es el backend de identidad self-hosted: principals con hash argon2id.
type Identity struct {
	pool   *pgxpool.Pool
	params password.Params
}

func (s *Store) Identity(params password.Params) *Identity {
	return &Identity{pool: s.pool, params: params}
}

var _ identity.Backend = (*Identity)(nil)

func (b *Identity) SignIn(ctx context.Context, email, secret string) (*identity.Principal, error) {
	const query = `SELECT id, email, display_name, password_hash FROM principals WHERE email = $1`
	var (
		p    identity.Principal
		hash string
	)
	err := b.pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(&p.ID, &p.Email, &p.DisplayName, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(secret, hash) {
		return nil, identity.ErrInvalidCredentials
	}
	return &p, nil
}

func (b *Identity) SignUp(ctx context.Context, email, secret, displayName string) (*identity.Principal, error) {
	hash, err := password.Hash(b.params, secret)
	if err != nil {
		return nil, err
	}
	p := identity.Principal{ID: uuid.NewString(), Email: strings.ToLower(email), DisplayName: displayName}

	// DO NOTHING + RETURNING vacío = el email ya existía (carrera entre dos altas).
	const query = `
		INSERT INTO principals (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`
	err = b.pool.QueryRow(ctx, query, p.ID, p.Email, p.DisplayName, hash).Scan(&p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
