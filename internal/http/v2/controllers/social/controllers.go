package social

import svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/social"

// Controllers agrupa los controllers de conexión a plataformas.
type Controllers struct {
	Connect      *ConnectController
	Callback     *CallbackController
	Integrations *IntegrationsController
	Connections  *ConnectionsController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Connect:      NewConnectController(s.Connect),
		Callback:     NewCallbackController(s.Callback),
		Integrations: NewIntegrationsController(s.Integrations),
		Connections:  NewConnectionsController(s.Connections),
	}
}
