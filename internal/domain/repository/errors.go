package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe (o no es del principal).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
