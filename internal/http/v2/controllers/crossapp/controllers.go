package crossapp

import svc "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/services/crossapp"

type Controllers struct {
	CrossApp *CrossAppController
}

func NewControllers(s svc.Service) *Controllers {
	return &Controllers{CrossApp: NewCrossAppController(s)}
}
