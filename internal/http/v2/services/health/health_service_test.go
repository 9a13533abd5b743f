package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		deps   Deps
		status string
	}{
		{"all ok", Deps{StoreCheck: ok, CacheCheck: ok, BridgeEnabled: true}, "ready"},
		{"no checks configured", Deps{BridgeEnabled: true}, "ready"},
		{"cache down", Deps{StoreCheck: ok, CacheCheck: down, BridgeEnabled: true}, "degraded"},
		{"bridge disabled", Deps{StoreCheck: ok, CacheCheck: ok}, "degraded"},
		{"store down", Deps{StoreCheck: down, CacheCheck: ok, BridgeEnabled: true}, "unavailable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewHealthService(tc.deps).Check(context.Background())
			assert.Equal(t, tc.status, res.Status)
			assert.Contains(t, res.Components, "store")
		})
	}
}

func TestCheckReportsMessage(t *testing.T) {
	res := NewHealthService(Deps{StoreCheck: down}).Check(context.Background())
	assert.Equal(t, "error", res.Components["store"].Status)
	assert.Contains(t, res.Components["store"].Message, "connection refused")
	assert.Equal(t, "disabled", res.Components["cache"].Status)
}
