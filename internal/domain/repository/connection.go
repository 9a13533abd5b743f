package repository

import (
	"context"
	"time"
)

// SocialConnection es el vínculo (principal, plataforma). A lo sumo una por par.
type SocialConnection struct {
	PrincipalID   string
	Platform      string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     *time.Time
	ProfileID     string
	ProfileName   string
	ProfileImage  string
	IntegrationID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ConnectionRepository interface {
	// Upsert inserta o sobreescribe la conexión de (PrincipalID, Platform).
	// inserted es true si no existía.
	Upsert(ctx context.Context, c SocialConnection) (inserted bool, err error)
	Get(ctx context.Context, principalID, platform string) (*SocialConnection, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]SocialConnection, error)
	Delete(ctx context.Context, principalID, platform string) error
}
