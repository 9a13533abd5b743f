// Package identity abstrae el dominio de identidad propio: el backend que
// valida (email, secreto) y crea principals. El Credential Bridge lo usa
// para materializar identidades de partners.
package identity

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("identity: principal not found")
	ErrAlreadyExists      = errors.New("identity: principal already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

type Principal struct {
	ID          string
	Email       string
	DisplayName string
}

// Backend es el contrato mínimo del proveedor de identidad.
type Backend interface {
	// SignIn devuelve ErrNotFound si el email no existe y ErrInvalidCredentials si el secreto no coincide.
	SignIn(ctx context.Context, email, secret string) (*Principal, error)
	// SignUp devuelve ErrAlreadyExists si el email ya está tomado.
	SignUp(ctx context.Context, email, secret, displayName string) (*Principal, error)
}
