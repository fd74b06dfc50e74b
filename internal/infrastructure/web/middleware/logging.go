package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"fx-rates-service/internal/infrastructure/logging"
)

// Cabeceras que se registran en debug (sin datos sensibles)
var loggedHeaders = []string{
	"Content-Type",
	"Accept",
	"Accept-Encoding",
	"Cache-Control",
	"X-Forwarded-For",
	"X-Real-IP",
}

// Patrones comunes de ataques en path o query
var suspiciousPatterns = []string{
	"../",
	"<script",
	"select ",
	"union ",
	"drop ",
	"exec(",
	"eval(",
}

// LoggingMiddleware complementa a RequestTracingMiddleware con el log de recepción,
// detalle de debug y advertencias ante requests sospechosos. Debe ir después del tracing.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.HTTP().RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), getRemoteIP(r))

		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers":        extractImportantHeaders(r),
			"query":          r.URL.RawQuery,
			"content_length": r.ContentLength,
		})

		if isSuspiciousRequest(r) {
			logging.Warn(ctx, "Suspicious request pattern detected", logging.Fields{
				logging.FieldHTTPMethod:   r.Method,
				logging.FieldHTTPPath:     r.URL.Path,
				logging.FieldHTTPRemoteIP: getRemoteIP(r),
			})
		}

		next.ServeHTTP(w, r)
	})
}

func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)
	for _, header := range loggedHeaders {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}
	return headers
}

// isSuspiciousRequest detecta patrones sospechosos en las requests
func isSuspiciousRequest(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.ToLower(query)

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return true
		}
	}

	// Content-Length inusualmente grande para una API de solo lectura
	return r.ContentLength > 1024*1024
}
