package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// HTTPMetricsMiddleware collects HTTP metrics for Prometheus
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		wrapped := &responseWriterMetrics{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		RecordHTTPRequest(r.Method, routeLabel(r), wrapped.statusCode, time.Since(startTime).Seconds(), wrapped.written)
	})
}

// responseWriterMetrics wraps http.ResponseWriter to capture metrics
type responseWriterMetrics struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriterMetrics) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriterMetrics) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// routeLabel usa la plantilla de ruta de mux para evitar alta cardinalidad
// (ej: /api/v1/cache/{name} en lugar de /api/v1/cache/rates)
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath normalizes URL paths that did not match a route
func normalizePath(path string) string {
	if path == "/" {
		return "/"
	}

	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "/health", path == "/ready", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/swagger"):
		return "/swagger/*"
	case strings.HasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	default:
		return "/unknown"
	}
}
