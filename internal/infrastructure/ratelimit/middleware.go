package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"fx-rates-service/internal/infrastructure/config"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
)

// RateLimitMiddleware provides per-client rate limiting for HTTP requests
type RateLimitMiddleware struct {
	limiter   *RateLimiterCollection
	skipPaths map[string]bool
	enabled   bool
}

// NewRateLimitMiddleware creates a new rate limiting middleware with configuration
func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	// Paths that should skip rate limiting
	skipPaths := map[string]bool{
		"/health":  true,
		"/ready":   true,
		"/metrics": true,
	}

	var limiter *RateLimiterCollection
	if cfg.Enabled {
		limiter = NewRateLimiterCollection(cfg.Capacity, cfg.RefillRate)
	}

	return &RateLimitMiddleware{
		limiter:   limiter,
		skipPaths: skipPaths,
		enabled:   cfg.Enabled,
	}
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/swagger") {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientID := getClientID(r)

		allowed := rlm.limiter.Allow(clientID)
		tokensRemaining := rlm.limiter.Tokens(clientID)

		metrics.RecordRateLimitResult(allowed)

		if !allowed {
			logging.Warn(ctx, "Rate limit exceeded", logging.Fields{
				"client_id":  clientID,
				"path":       r.URL.Path,
				"method":     r.Method,
				"user_agent": r.Header.Get("User-Agent"),
			})

			writeRateLimitError(w)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(tokensRemaining))
		next.ServeHTTP(w, r)
	})
}

// getClientID extracts a client identifier from the request
func getClientID(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		parts := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeRateLimitError writes a rate limit exceeded error response
func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   "RATE_LIMIT_EXCEEDED",
		"message": "Rate limit exceeded. Please slow down your requests.",
		"code":    http.StatusTooManyRequests,
	})
}

// Stats returns rate limiting statistics
func (rlm *RateLimitMiddleware) Stats() map[string]interface{} {
	if rlm.limiter == nil {
		return map[string]interface{}{"enabled": false}
	}
	stats := rlm.limiter.Stats()
	stats["enabled"] = rlm.enabled
	return stats
}
