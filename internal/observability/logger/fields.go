package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }

// Negocio

func PrincipalID(v string) zap.Field   { return zap.String("principal_id", v) }
func Platform(v string) zap.Field      { return zap.String("platform", v) }
func Partner(v string) zap.Field       { return zap.String("partner", v) }
func IntegrationID(v string) zap.Field { return zap.String("integration_id", v) }
func TrustDomain(v string) zap.Field   { return zap.String("trust_domain", v) }
func Stage(v string) zap.Field         { return zap.String("stage", v) }

// Email loguea solo el dominio; el local-part no sale a los logs.
func Email(v string) zap.Field {
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] == '@' {
			return zap.String("email_domain", v[i+1:])
		}
	}
	return zap.String("email_domain", "")
}

// Sistema

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
