package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
)

type connectionRepo struct{ pool *pgxpool.Pool }

// Upsert usa xmax = 0 para distinguir insert de update en una sola ida.
func (r *connectionRepo) Upsert(ctx context.Context, c repository.SocialConnection) (bool, error) {
	const query = `
		INSERT INTO social_connections (
			user_id, platform, access_token, refresh_token, expires_at,
			profile_id, profile_name, profile_image, integration_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			profile_id = EXCLUDED.profile_id,
			profile_name = EXCLUDED.profile_name,
			profile_image = EXCLUDED.profile_image,
			integration_id = EXCLUDED.integration_id,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`
	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		c.PrincipalID, c.Platform, c.AccessToken, nullIfEmpty(c.RefreshToken), c.ExpiresAt,
		c.ProfileID, c.ProfileName, c.ProfileImage, nullIfEmpty(c.IntegrationID),
	).Scan(&inserted)
	return inserted, err
}

const connectionColumns = `user_id, platform, access_token, refresh_token, expires_at,
	profile_id, profile_name, profile_image, integration_id, created_at, updated_at`

func scanConnection(row pgx.Row) (*repository.SocialConnection, error) {
	var (
		c             repository.SocialConnection
		refresh, intg *string
	)
	err := row.Scan(&c.PrincipalID, &c.Platform, &c.AccessToken, &refresh, &c.ExpiresAt,
		&c.ProfileID, &c.ProfileName, &c.ProfileImage, &intg, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.RefreshToken = deref(refresh)
	c.IntegrationID = deref(intg)
	return &c, nil
}

func (r *connectionRepo) Get(ctx context.Context, principalID, platform string) (*repository.SocialConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM social_connections WHERE user_id = $1 AND platform = $2`
	c, err := scanConnection(r.pool.QueryRow(ctx, query, principalID, platform))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return c, err
}

func (r *connectionRepo) ListByPrincipal(ctx context.Context, principalID string) ([]repository.SocialConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM social_connections WHERE user_id = $1 ORDER BY platform`
	rows, err := r.pool.Query(ctx, query, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.SocialConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *connectionRepo) Delete(ctx context.Context, principalID, platform string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM social_connections WHERE user_id = $1 AND platform = $2`, principalID, platform)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
