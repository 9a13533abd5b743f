// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/health"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
// Un check nil se reporta como "disabled".
type Deps struct {
	StoreCheck    func(ctx context.Context) error // crítico
	CacheCheck    func(ctx context.Context) error
	BridgeEnabled bool
	Timeout       time.Duration
}

type Services struct {
	Health HealthService
}

func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

const componentHealth = "health"

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
		Version:    os.Getenv("SERVICE_VERSION"),
		Commit:     os.Getenv("SERVICE_COMMIT"),
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) Store (crítico)
	if st := s.probe(ctx, s.deps.StoreCheck); st.Status == "error" {
		response.Components["store"] = st
		hasCriticalErrors = true
		log.Error("store unavailable", logger.String("message", st.Message))
	} else {
		response.Components["store"] = st
	}

	// 2) Cache (no crítico: el replay guard falla abierto)
	if st := s.probe(ctx, s.deps.CacheCheck); st.Status == "error" {
		response.Components["cache"] = st
		hasErrors = true
		log.Warn("cache unavailable", logger.String("message", st.Message))
	} else {
		response.Components["cache"] = st
	}

	// 3) Credential bridge
	if s.deps.BridgeEnabled {
		response.Components["bridge"] = dto.HealthStatus{Status: "ok"}
	} else {
		response.Components["bridge"] = dto.HealthStatus{Status: "disabled", Message: "CREDENTIAL_BRIDGE_KEY not set"}
		hasErrors = true
	}

	switch {
	case hasCriticalErrors:
		response.Status = "unavailable"
	case hasErrors:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}

func (s *healthService) probe(ctx context.Context, check func(context.Context) error) dto.HealthStatus {
	if check == nil {
		return dto.HealthStatus{Status: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
	}
	return dto.HealthStatus{Status: "ok"}
}
