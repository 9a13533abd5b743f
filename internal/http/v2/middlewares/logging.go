package middlewares

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/metrics"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/observability/logger"
)

// statusRecorder captura status y bytes de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// clientIP toma el primer X-Forwarded-For, o el RemoteAddr.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// routePattern devuelve el patrón chi ("/callback/{platform}") para no
// explotar la cardinalidad de métricas con paths concretos.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// WithLogging inyecta un logger scoped (request_id, method, path) en el
// contexto, loguea el cierre del request y observa la latencia en m.
func WithLogging(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := logger.L().With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			ctx := logger.ToContext(r.Context(), reqLog)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			dur := time.Since(start)
			m.ObserveHTTP(r.Method, routePattern(r), rec.status, dur)

			fields := []zap.Field{logger.Status(rec.status), logger.Duration(dur), logger.ClientIP(clientIP(r)), logger.UserAgent(r.UserAgent())}
			switch {
			case rec.status >= 500:
				reqLog.Error("request failed", fields...)
			case rec.status >= 400:
				reqLog.Warn("request completed with client error", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
		})
	}
}
