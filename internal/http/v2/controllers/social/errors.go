package social

import (
	"errors"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
	svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"
)

// mapError traduce errores de service a AppError para los endpoints JSON.
func mapError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrUnauthorized):
		return httperrors.ErrUnauthorized
	case errors.Is(err, svc.ErrUnknownPlatform):
		return httperrors.ErrInvalidProvider.WithDetail("unknown platform")
	case errors.Is(err, svc.ErrInvalidIntegration):
		return httperrors.ErrInvalidIntegration
	case errors.Is(err, svc.ErrMissingIntegration):
		return httperrors.ErrMissingField.WithDetail("integrationId is required")
	case errors.Is(err, svc.ErrPlatformNotConfigured):
		return httperrors.ErrConfiguration.WithDetail("platform credentials not configured")
	case errors.Is(err, svc.ErrMissingCode):
		return httperrors.ErrMissingCode
	case errors.Is(err, svc.ErrMissingField), errors.Is(err, repository.ErrInvalidInput):
		return httperrors.ErrMissingField.WithDetail("platform, clientId and clientSecret are required")
	case repository.IsNotFound(err):
		return httperrors.ErrNotFound
	default:
		return httperrors.ErrInternal.WithCause(err)
	}
}

// redirectCode es el ?error= de los flujos de navegador para errores de Start.
func redirectCode(err error) string {
	switch {
	case errors.Is(err, svc.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, svc.ErrInvalidIntegration):
		return svc.CodeInvalidIntegration
	case errors.Is(err, svc.ErrMissingIntegration):
		return "missing_integration"
	case errors.Is(err, svc.ErrPlatformNotConfigured):
		return "platform_not_configured"
	default:
		return "connect_failed"
	}
}
