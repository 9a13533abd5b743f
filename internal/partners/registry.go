// Package partners es el catálogo de aplicaciones partner habilitadas para
// login cross-app. Los descriptores son estáticos; URLs, secretos y project
// ids se leen del entorno en cada Resolve.
package partners

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/validation"
)

// Descriptor es la parte pública (se muestra en la pantalla de login).
type Descriptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// Partner es el descriptor más la configuración de entorno. Los campos pueden
// venir vacíos; el caller decide si le alcanza.
type Partner struct {
	Descriptor
	AppURL       string
	SharedSecret string
	ProjectID    string
}

func (p Partner) LoginConfigured() bool  { return p.AppURL != "" }
func (p Partner) VerifyConfigured() bool { return p.ProjectID != "" }

// builtin es el catálogo estático.
var builtin = []Descriptor{
	{ID: "salesforge", Name: "SalesForge CRM", PrimaryColor: "#0f62fe", SecondaryColor: "#d0e2ff"},
	{ID: "leadhub", Name: "LeadHub", PrimaryColor: "#198038", SecondaryColor: "#a7f0ba"},
	{ID: "campaignly", Name: "Campaignly", PrimaryColor: "#8a3ffc", SecondaryColor: "#e8daff"},
}

type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Descriptor
	getenv func(string) string
}

type Option func(*Registry)

// WithEnv reemplaza os.Getenv (tests).
func WithEnv(getenv func(string) string) Option {
	return func(r *Registry) { r.getenv = getenv }
}

// New arma el registry con el catálogo estático más extras (config YAML);
// un extra con id existente lo pisa.
func New(extra []Descriptor, opts ...Option) *Registry {
	r := &Registry{byID: map[string]Descriptor{}, getenv: os.Getenv}
	for _, d := range builtin {
		r.byID[d.ID] = d
	}
	for _, d := range extra {
		d.ID = strings.ToLower(strings.TrimSpace(d.ID))
		if !validation.ValidPartnerID(d.ID) {
			continue
		}
		if d.Name == "" {
			d.Name = d.ID
		}
		r.byID[d.ID] = d
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnvPrefix: "lead-hub" -> "LEAD_HUB".
func EnvPrefix(id string) string {
	return strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
}

func (r *Registry) Resolve(id string) (Partner, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	r.mu.RLock()
	d, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return Partner{}, false
	}
	prefix := EnvPrefix(id)
	return Partner{
		Descriptor:   d,
		AppURL:       strings.TrimRight(strings.TrimSpace(r.getenv(prefix+"_APP_URL")), "/"),
		SharedSecret: r.getenv(prefix + "_SHARED_SECRET"),
		ProjectID:    strings.TrimSpace(r.getenv("NEXT_PUBLIC_" + prefix + "_FIREBASE_PROJECT_ID")),
	}, true
}

// List devuelve los descriptores ordenados por id.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
