package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "prod" emite JSON, cualquier otro valor usa consola.
	Env         string
	Level       string
	ServiceName string
	Version     string
}

var (
	mu       sync.RWMutex
	instance *zap.Logger
	once     sync.Once
)

// Init construye el singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		l := build(cfg)
		mu.Lock()
		instance = l
		mu.Unlock()
	})
}

// Replace swaps the singleton; tests use it to capture output with zaptest/observer.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	prev := instance
	instance = l
	mu.Unlock()
	return func() {
		mu.Lock()
		instance = prev
		mu.Unlock()
	}
}

// L retorna el logger global, con defaults de dev si Init no fue llamado.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

func Named(name string) *zap.Logger { return L().Named(name) }

func With(fields ...zap.Field) *zap.Logger { return L().With(fields...) }

// S retorna la variante sugared para logs printf-style (CLI).
func S() *zap.SugaredLogger { return L().Sugar() }

func Sync() error {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}

func build(cfg Config) *zap.Logger {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Env, "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// fallback: nunca dejamos al proceso sin logger
		l = zap.NewExample()
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
