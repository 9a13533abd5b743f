// Package crossapp contiene los DTOs del login federado con partners.
package crossapp

import "github.com/nitheshb/caco-Marketing-tool-sub001/internal/partners"

type ProvidersResponse struct {
	Providers []partners.Descriptor `json:"providers"`
}

type VerifyRequest struct {
	IDToken         string         `json:"idToken"`
	PartnerUserData map[string]any `json:"partnerUserData"`
}

// VerifyResponse se serializa plano: partnerUserData primero y los campos
// propios encima (un partner no puede pisar email/password/uid).
type VerifyResponse map[string]any

const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldUID         = "uid"
	FieldOrgID       = "org_id"
	FieldProjectID   = "project_id"
	FieldSourceLogin = "source_login"
	FieldRedirect    = "redirect"
)
