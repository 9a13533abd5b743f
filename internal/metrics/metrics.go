// Package metrics expone los contadores Prometheus del servicio. Un *Metrics
// nil es válido y no registra nada.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	keyFetches     *prometheus.CounterVec
	connectStarts  *prometheus.CounterVec
	callbacks      *prometheus.CounterVec
	crossAppVerify *prometheus.CounterVec
	bridgeOutcomes *prometheus.CounterVec
}

// New registra las métricas en reg; con reg nil usa un registry propio.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests HTTP procesadas",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		keyFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idtoken_key_fetches_total",
			Help: "Descargas de claves públicas por trust domain",
		}, []string{"domain", "result"}),
		connectStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_connect_started_total",
			Help: "Redirects de autorización emitidos por plataforma",
		}, []string{"platform"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_callbacks_total",
			Help: "Callbacks OAuth por plataforma y resultado (connected o código de error)",
		}, []string{"platform", "result"}),
		crossAppVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crossapp_verify_total",
			Help: "Verificaciones cross-app por partner y resultado",
		}, []string{"partner", "result"}),
		bridgeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credential_bridge_total",
			Help: "Principals resueltos por el credential bridge (created|existing)",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.keyFetches, m.connectStarts,
		m.callbacks, m.crossAppVerify, m.bridgeOutcomes)
	return m
}

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) KeyFetch(domain string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.keyFetches.WithLabelValues(domain, result).Inc()
}

func (m *Metrics) ConnectStarted(platform string) {
	if m == nil {
		return
	}
	m.connectStarts.WithLabelValues(platform).Inc()
}

func (m *Metrics) Callback(platform, result string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(platform, result).Inc()
}

func (m *Metrics) CrossAppVerify(partner, result string) {
	if m == nil {
		return
	}
	m.crossAppVerify.WithLabelValues(partner, result).Inc()
}

func (m *Metrics) Bridge(created bool) {
	if m == nil {
		return
	}
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.bridgeOutcomes.WithLabelValues(outcome).Inc()
}
