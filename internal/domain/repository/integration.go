package repository

import (
	"context"
	"time"
)

// Integration es una app OAuth propia del principal (client id/secret).
// Única por (PrincipalID, Platform, ClientID).
type Integration struct {
	ID          string
	PrincipalID string
	Platform    string
	ClientID    string
	// ClientSecret viaja en claro dentro del proceso; los adapters lo guardan cifrado.
	ClientSecret string
	Name         string
	CreatedAt    time.Time
}

type IntegrationRepository interface {
	// Upsert crea o actualiza por (PrincipalID, Platform, ClientID) y devuelve el registro final.
	Upsert(ctx context.Context, in Integration) (*Integration, error)
	// GetOwned busca por id restringido al principal; ajena o inexistente = ErrNotFound.
	GetOwned(ctx context.Context, id, principalID string) (*Integration, error)
	ListByPrincipal(ctx context.Context, principalID, platform string) ([]Integration, error)
	DeleteOwned(ctx context.Context, id, principalID string) error
}
