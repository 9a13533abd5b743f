// Package validation agrupa reglas de formato compartidas entre config y runtime.
package validation

import "regexp"

// Partner id:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9-].
// - Length 1..32.
//
// El id termina en nombres de env (LEAD_HUB_APP_URL) y en paths (/cross-app/{id}/verify),
// por eso no se permiten "_" ni ".".
var partnerIDRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// ValidPartnerID returns true if id can be used as a partner identifier.
func ValidPartnerID(id string) bool {
	return partnerIDRe.MatchString(id)
}
