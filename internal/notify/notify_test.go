package notify

import (
	"context"
	"errors"
	"testing"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, subject, html, text string
	err                     error
}

func (r *recordingSender) Send(to, subject, htmlBody, textBody string) error {
	r.to, r.subject, r.html, r.text = to, subject, htmlBody, textBody
	return r.err
}

func TestMailerConnectionCreated(t *testing.T) {
	rs := &recordingSender{}
	m := NewMailer(rs)

	err := m.ConnectionCreated(context.Background(), ConnectionEvent{
		Email:        "ana@example.com",
		DisplayName:  "Ana <3",
		Platform:     "youtube",
		ProfileName:  "Canal de Ana",
		DashboardURL: "https://app.test/dashboard",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", rs.to)
	assert.Equal(t, "YouTube conectado", rs.subject)
	assert.Contains(t, rs.html, "Ana &lt;3")
	assert.Contains(t, rs.html, "Canal de Ana")
	assert.Contains(t, rs.text, "Hola Ana <3,")
	assert.Contains(t, rs.text, "https://app.test/dashboard")
}

func TestMailerSkipsWithoutEmail(t *testing.T) {
	rs := &recordingSender{err: errors.New("should not be called")}
	require.NoError(t, NewMailer(rs).ConnectionCreated(context.Background(), ConnectionEvent{Platform: "tiktok"}))
	assert.Empty(t, rs.to)
}

func TestPlatformTitle(t *testing.T) {
	assert.Equal(t, "Facebook", platformTitle("facebook"))
	assert.Equal(t, "Instagram", platformTitle("instagram"))
	assert.Equal(t, "TikTok", platformTitle("tiktok"))
}

type fakeDialer struct {
	sent []*mail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*mail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSenderUsesDialer(t *testing.T) {
	fd := &fakeDialer{}
	s := NewSMTPSender(SMTPConfig{Host: "smtp.test", Port: 587, From: "noreply@app.test"})
	s.dial = func(SMTPConfig) Dialer { return fd }

	require.NoError(t, s.Send("ana@example.com", "hola", "<p>hola</p>", "hola"))
	require.Len(t, fd.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, fd.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"noreply@app.test"}, fd.sent[0].GetHeader("From"))

	fd.err = errors.New("dial tcp: refused")
	err := s.Send("ana@example.com", "hola", "", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestNewSMTPSenderDefaultsTLSMode(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h"})
	assert.Equal(t, "auto", s.cfg.TLSMode)
}
