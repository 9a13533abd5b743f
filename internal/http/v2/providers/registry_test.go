package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubAdapter struct{ name string }

func (s stubAdapter) Platform() string               { return s.name }
func (s stubAdapter) Scopes() []string               { return nil }
func (s stubAdapter) RedirectPolicy() RedirectPolicy { return RedirectFromBaseURL }
func (s stubAdapter) AllowsSystemDefault() bool      { return false }
func (s stubAdapter) AuthorizeURL(Client, string, string) string {
	return ""
}
func (s stubAdapter) Exchange(context.Context, Client, string, string) (*TokenSet, error) {
	return nil, nil
}
func (s stubAdapter) Profile(context.Context, Client, *TokenSet) (*Profile, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubAdapter{"tiktok"}, stubAdapter{"facebook"})
	r.Register(stubAdapter{"youtube"})

	_, ok := r.Get("facebook")
	assert.True(t, ok)
	_, ok = r.Get("myspace")
	assert.False(t, ok)
	assert.Equal(t, []string{"facebook", "tiktok", "youtube"}, r.Platforms())
}

func TestExpiresIn(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, ExpiresIn(now, 0))
	got := ExpiresIn(now, 3600)
	if assert.NotNil(t, got) {
		assert.Equal(t, now.Add(time.Hour), *got)
	}
}
