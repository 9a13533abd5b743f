package social

import (
	"context"
	"strings"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/domain/repository"
	dto "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/dto/social"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// IntegrationService gestiona las apps OAuth propias del principal.
type IntegrationService interface {
	List(ctx context.Context, principalID, platform string) ([]dto.IntegrationView, error)
	Save(ctx context.Context, principalID string, req dto.SaveIntegrationRequest) (*dto.IntegrationView, error)
	Delete(ctx context.Context, principalID, id string) error
}

type integrationService struct {
	deps Deps
}

func integrationView(in repository.Integration) dto.IntegrationView {
	return dto.IntegrationView{
		ID:        in.ID,
		Platform:  in.Platform,
		ClientID:  in.ClientID,
		Name:      in.Name,
		CreatedAt: in.CreatedAt,
	}
}

func (s *integrationService) List(ctx context.Context, principalID, platform string) ([]dto.IntegrationView, error) {
	if principalID == "" {
		return nil, ErrUnauthorized
	}
	if platform != "" {
		if _, ok := s.deps.Adapters.Get(platform); !ok {
			return nil, ErrUnknownPlatform
		}
	}
	rows, err := s.deps.Integrations.ListByPrincipal(ctx, principalID, platform)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IntegrationView, 0, len(rows))
	for _, in := range rows {
		out = append(out, integrationView(in))
	}
	return out, nil
}

func (s *integrationService) Save(ctx context.Context, principalID string, req dto.SaveIntegrationRequest) (*dto.IntegrationView, error) {
	if principalID == "" {
		return nil, ErrUnauthorized
	}
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.ClientSecret = strings.TrimSpace(req.ClientSecret)
	if req.Platform == "" || req.ClientID == "" || req.ClientSecret == "" {
		return nil, ErrMissingField
	}
	if _, ok := s.deps.Adapters.Get(req.Platform); !ok {
		return nil, ErrUnknownPlatform
	}

	saved, err := s.deps.Integrations.Upsert(ctx, repository.Integration{
		PrincipalID:  principalID,
		Platform:     req.Platform,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Name:         strings.TrimSpace(req.Name),
	})
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("integration saved",
		logger.Layer("service"),
		logger.Platform(saved.Platform),
		logger.IntegrationID(saved.ID),
	)
	v := integrationView(*saved)
	return &v, nil
}

func (s *integrationService) Delete(ctx context.Context, principalID, id string) error {
	if principalID == "" {
		return ErrUnauthorized
	}
	if err := s.deps.Integrations.DeleteOwned(ctx, id, principalID); err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidIntegration
		}
		return err
	}
	return nil
}

// ConnectionService lista y desconecta cuentas; los tokens no salen de acá.
type ConnectionService interface {
	List(ctx context.Context, principalID string) ([]dto.ConnectionView, error)
	Disconnect(ctx context.Context, principalID, platform string) error
}

type connectionService struct {
	deps Deps
}

func (s *connectionService) List(ctx context.Context, principalID string) ([]dto.ConnectionView, error) {
	if principalID == "" {
		return nil, ErrUnauthorized
	}
	rows, err := s.deps.Connections.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConnectionView, 0, len(rows))
	for _, c := range rows {
		out = append(out, dto.ConnectionView{
			Platform:      c.Platform,
			ProfileID:     c.ProfileID,
			ProfileName:   c.ProfileName,
			ProfileImage:  c.ProfileImage,
			IntegrationID: c.IntegrationID,
			ExpiresAt:     c.ExpiresAt,
			ConnectedAt:   c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *connectionService) Disconnect(ctx context.Context, principalID, platform string) error {
	if principalID == "" {
		return ErrUnauthorized
	}
	if _, ok := s.deps.Adapters.Get(platform); !ok {
		return ErrUnknownPlatform
	}
	err := s.deps.Connections.Delete(ctx, principalID, platform)
	if err == nil {
		logger.From(ctx).Info("platform disconnected", logger.Layer("service"), logger.Platform(platform))
	}
	return err
}
