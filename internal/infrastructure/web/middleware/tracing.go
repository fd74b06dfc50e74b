package middleware

import (
	"net/http"
	"time"

	"fx-rates-service/internal/infrastructure/logging"
)

const RequestIDHeader = "X-Request-ID"

// responseWriter captura el status code y los bytes escritos
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// RequestTracingMiddleware asigna un request ID (propaga el entrante si es válido)
// y registra la finalización de cada request
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !logging.IsValidRequestID(requestID) {
			requestID = logging.GenerateRequestID()
		}

		startTime := time.Now()
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithStartTime(ctx, startTime)

		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		if wrapped.statusCode == 0 {
			wrapped.statusCode = http.StatusOK
		}

		durationMs := float64(time.Since(startTime).Nanoseconds()) / 1e6
		logging.HTTPRequest(ctx, r.Method, r.URL.Path, wrapped.statusCode, durationMs)
	})
}

// getRemoteIP extrae la IP real del cliente
func getRemoteIP(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		return xForwardedFor
	}
	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}
	return r.RemoteAddr
}
