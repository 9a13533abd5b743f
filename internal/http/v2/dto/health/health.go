package health

import "time"

// HealthStatus es el estado de un componente.
type HealthStatus struct {
	Status  string `json:"status"` // ok | error | disabled
	Message string `json:"message,omitempty"`
}

// HealthResponse es el body de GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Version    string                  `json:"version,omitempty"`
	Commit     string                  `json:"commit,omitempty"`
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
}
