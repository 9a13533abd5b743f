package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext guarda un logger "scoped" (request_id, path, ...) en el contexto.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From devuelve el logger del request o el global si no hay uno.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}
