package notify

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// Sender envía un email multipart (texto + HTML).
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// Dialer abstrae go-mail para tests.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// auto | starttls | ssl
	TLSMode string
}

type SMTPSender struct {
	cfg  SMTPConfig
	dial func(SMTPConfig) Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg, dial: newDialer}
}

func newDialer(cfg SMTPConfig) Dialer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	// auto/starttls: go-mail negocia STARTTLS si el server lo ofrece
	if cfg.TLSMode == "ssl" {
		d.SSL = true
	}
	return d
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}
	return m
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("notify.smtp"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
		logger.Email(to),
	)
	if err := s.dial(s.cfg).DialAndSend(s.message(to, subject, htmlBody, textBody)); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("email sent", logger.String("tls_mode", s.cfg.TLSMode))
	return nil
}
