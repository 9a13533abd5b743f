// Package logger wraps a process-wide zap logger and a request-scoped copy
// carried in context.Context.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "social-connect"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Callback.Complete"))
//	log.Info("connection saved", logger.Platform("tiktok"), logger.PrincipalID(pid))
package logger
