// Package idtoken verifica ID tokens RS256 emitidos por un trust domain
// (el proyecto de identidad propio o el de un partner) contra sus claves
// públicas, con cache de claves por dominio.
package idtoken

import "fmt"

type KeyFormat string

const (
	// FormatX509 es un objeto JSON kid -> certificado PEM (securetoken de Google).
	FormatX509 KeyFormat = "x509"
	// FormatJWKS es un JWK Set estándar.
	FormatJWKS KeyFormat = "jwks"
)

const firebaseKeysURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// TrustDomain describe un emisor de tokens y lo que esperamos de ellos.
type TrustDomain struct {
	// Name es la clave del cache de claves; dos dominios nunca comparten entrada.
	Name      string
	ProjectID string
	Issuer    string
	Audience  string
	KeysURL   string
	Format    KeyFormat
}

// FirebaseDomain arma el trust domain de un proyecto Firebase/securetoken.
func FirebaseDomain(name, projectID string) TrustDomain {
	return TrustDomain{
		Name:      name,
		ProjectID: projectID,
		Issuer:    "https://securetoken.google.com/" + projectID,
		Audience:  projectID,
		KeysURL:   firebaseKeysURL,
		Format:    FormatX509,
	}
}

func (d TrustDomain) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("idtoken: trust domain without name")
	case d.Issuer == "" || d.Audience == "":
		return fmt.Errorf("idtoken: trust domain %q missing issuer or audience", d.Name)
	case d.KeysURL == "":
		return fmt.Errorf("idtoken: trust domain %q missing keys url", d.Name)
	}
	return nil
}
