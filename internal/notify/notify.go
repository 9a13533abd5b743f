// Package notify avisa al principal cuando conecta una cuenta social nueva.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"strings"
	texttmpl "text/template"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// ConnectionEvent describe una conexión recién creada.
type ConnectionEvent struct {
	Email       string
	DisplayName string
	Platform    string
	ProfileName string
	// DashboardURL es el link absoluto al dashboard.
	DashboardURL string
}

type Notifier interface {
	ConnectionCreated(ctx context.Context, ev ConnectionEvent) error
}

// Noop descarta los eventos; se usa sin SMTP configurado.
type Noop struct{}

func (Noop) ConnectionCreated(context.Context, ConnectionEvent) error { return nil }

var (
	htmlConnected = htmltmpl.Must(htmltmpl.New("connected").Parse(
		`<p>Hola {{.Greeting}},</p>` +
			`<p>Conectaste tu cuenta de <strong>{{.PlatformTitle}}</strong>{{if .ProfileName}} ({{.ProfileName}}){{end}}.</p>` +
			`<p><a href="{{.DashboardURL}}">Ir al dashboard</a></p>`))
	textConnected = texttmpl.Must(texttmpl.New("connected").Parse(
		"Hola {{.Greeting}},\n\nConectaste tu cuenta de {{.PlatformTitle}}{{if .ProfileName}} ({{.ProfileName}}){{end}}.\n\n{{.DashboardURL}}\n"))
)

type Mailer struct {
	sender Sender
}

func NewMailer(s Sender) *Mailer { return &Mailer{sender: s} }

type view struct {
	ConnectionEvent
	Greeting      string
	PlatformTitle string
}

func platformTitle(p string) string {
	switch p {
	case "linkedin":
		return "LinkedIn"
	case "tiktok":
		return "TikTok"
	case "youtube":
		return "YouTube"
	}
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

// Render arma asunto y cuerpos del aviso.
func Render(ev ConnectionEvent) (subject, htmlBody, textBody string, err error) {
	v := view{ConnectionEvent: ev, Greeting: ev.DisplayName, PlatformTitle: platformTitle(ev.Platform)}
	if v.Greeting == "" {
		v.Greeting = ev.Email
	}
	var hb, tb bytes.Buffer
	if err := htmlConnected.Execute(&hb, v); err != nil {
		return "", "", "", err
	}
	if err := textConnected.Execute(&tb, v); err != nil {
		return "", "", "", err
	}
	return fmt.Sprintf("%s conectado", v.PlatformTitle), hb.String(), tb.String(), nil
}

func (m *Mailer) ConnectionCreated(ctx context.Context, ev ConnectionEvent) error {
	if ev.Email == "" {
		logger.From(ctx).Debug("connection notice skipped: principal without email", logger.Platform(ev.Platform))
		return nil
	}
	subject, h, t, err := Render(ev)
	if err != nil {
		return err
	}
	return m.sender.Send(ev.Email, subject, h, t)
}
