package middlewares

import "context"

type ctxKey string

const (
	ctxPrincipalKey ctxKey = "principal"
	ctxRequestIDKey ctxKey = "request_id"
)

// Principal es el usuario de la sesión propia (id token del dominio self).
type Principal struct {
	ID    string
	Email string
	Name  string
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// GetPrincipal retorna nil si el request no trae sesión válida.
func GetPrincipal(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey).(*Principal)
	return p
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
