package repository

import (
	"context"
	"time"
)

// PrincipalLogin es la metadata que se upsertea en cada login cross-app.
type PrincipalLogin struct {
	PrincipalID string
	Email       string
	DisplayName string
	SourceLogin string
	OrgID       string
	ProjectID   string
	At          time.Time
}

type PrincipalRepository interface {
	RecordLogin(ctx context.Context, in PrincipalLogin) error
	GetLogin(ctx context.Context, principalID string) (*PrincipalLogin, error)
}
