// Package social contiene los DTOs de conexiones e integraciones sociales.
package social

import "time"

// IntegrationView nunca incluye el client secret.
type IntegrationView struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	ClientID  string    `json:"clientId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type SaveIntegrationRequest struct {
	Platform     string `json:"platform"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Name         string `json:"name"`
}

// ConnectionView es la conexión sin tokens.
type ConnectionView struct {
	Platform      string     `json:"platform"`
	ProfileID     string     `json:"profileId,omitempty"`
	ProfileName   string     `json:"profileName"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	IntegrationID string     `json:"integrationId,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	ConnectedAt   time.Time  `json:"connectedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type ListIntegrationsResponse struct {
	Integrations []IntegrationView `json:"integrations"`
}

type ListConnectionsResponse struct {
	Connections []ConnectionView `json:"connections"`
}
