package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/config"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/server"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

var version = "dev"

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "social-connect",
		Version:     version,
	})
	defer logger.Sync()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(logger.ToContext(ctx, lg), cfg)
	if err != nil {
		lg.Fatal("wiring failed", zap.Error(err))
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("service up",
			zap.String("addr", cfg.Server.Addr),
			zap.String("base_url", cfg.App.BaseURL),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("cache", cfg.Cache.Kind),
			zap.String("identity", cfg.Identity.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			lg.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("graceful shutdown failed", zap.Error(err))
	}
	lg.Info("service stopped")
}
