package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
	m.KeyFetch("self", nil)
	m.Callback("tiktok", "connected")
	m.Bridge(true)
}

func TestCountersAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.KeyFetch("self", nil)
	m.KeyFetch("self", errors.New("down"))
	m.Callback("youtube", "connected")
	m.Callback("youtube", "connected")
	m.CrossAppVerify("leadhub", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `idtoken_key_fetches_total{domain="self",result="error"} 1`)
	assert.Contains(t, out, `social_callbacks_total{platform="youtube",result="connected"} 2`)
	assert.Contains(t, out, `crossapp_verify_total{partner="leadhub",result="ok"} 1`)
}
