package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/secretbox"
)

// integrationRepo guarda client_secret cifrado con secretbox cuando hay box.
type integrationRepo struct {
	pool *pgxpool.Pool
	box  *secretbox.Box
}

func (r *integrationRepo) seal(plain string) (string, error) {
	if r.box == nil || plain == "" {
		return plain, nil
	}
	return r.box.Encrypt(plain)
}

func (r *integrationRepo) open(stored string) (string, error) {
	if r.box == nil || stored == "" {
		return stored, nil
	}
	plain, err := r.box.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("decrypt client_secret: %w", err)
	}
	return plain, nil
}

func (r *integrationRepo) Upsert(ctx context.Context, in repository.Integration) (*repository.Integration, error) {
	if in.PrincipalID == "" || in.Platform == "" || in.ClientID == "" {
		return nil, repository.ErrInvalidInput
	}
	sealed, err := r.seal(in.ClientSecret)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO social_integrations (id, user_id, platform, client_id, client_secret, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, platform, client_id) DO UPDATE SET
			client_secret = EXCLUDED.client_secret,
			name = EXCLUDED.name
		RETURNING id, created_at
	`
	out := in
	err = r.pool.QueryRow(ctx, query, uuid.NewString(), in.PrincipalID, in.Platform, in.ClientID, sealed, in.Name).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const integrationColumns = `id, user_id, platform, client_id, client_secret, name, created_at`

func (r *integrationRepo) scan(row pgx.Row) (*repository.Integration, error) {
	var in repository.Integration
	var stored string
	if err := row.Scan(&in.ID, &in.PrincipalID, &in.Platform, &in.ClientID, &stored, &in.Name, &in.CreatedAt); err != nil {
		return nil, err
	}
	plain, err := r.open(stored)
	if err != nil {
		return nil, err
	}
	in.ClientSecret = plain
	return &in, nil
}

func (r *integrationRepo) GetOwned(ctx context.Context, id, principalID string) (*repository.Integration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	query := `SELECT ` + integrationColumns + ` FROM social_integrations WHERE id = $1 AND user_id = $2`
	in, err := r.scan(r.pool.QueryRow(ctx, query, id, principalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return in, err
}

func (r *integrationRepo) ListByPrincipal(ctx context.Context, principalID, platform string) ([]repository.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM social_integrations WHERE user_id = $1`
	args := []any{principalID}
	if platform != "" {
		query += ` AND platform = $2`
		args = append(args, platform)
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Integration
	for rows.Next() {
		in, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (r *integrationRepo) DeleteOwned(ctx context.Context, id, principalID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM social_integrations WHERE id = $1 AND user_id = $2`, id, principalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
