package logging

import (
	"context"
)

// Funciones globales de conveniencia. Usan el logger global por defecto.

func Debug(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Debug(ctx, message, fields)
}

func Info(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Info(ctx, message, fields)
}

func Warn(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Warn(ctx, message, fields)
}

func Error(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Error(ctx, message, fields)
}

func InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().InfoWithError(ctx, message, err, fields)
}

func WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().WarnWithError(ctx, message, err, fields)
}

func ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().ErrorWithError(ctx, message, err, fields)
}

// HTTPRequest registra la finalización de un request HTTP usando el HTTPLogger global
func HTTPRequest(ctx context.Context, method, path string, statusCode int, durationMs float64) {
	HTTP().RequestCompleted(ctx, method, path, statusCode, durationMs)
}

// ExternalRequest registra una llamada completada a una API externa
func ExternalRequest(ctx context.Context, service, endpoint string, durationMs float64, statusCode int) {
	ExternalAPI().RequestCompleted(ctx, service, endpoint, statusCode, durationMs)
}

// CacheOperation registra un hit o miss en una cache nombrada
func CacheOperation(ctx context.Context, cacheName, key string, hit bool) {
	if hit {
		Cache().Hit(ctx, cacheName, key)
		return
	}
	Cache().Miss(ctx, cacheName, key)
}

func HTTP() HTTPLogger {
	return GetGlobalLoggers().HTTP
}

func ExternalAPI() ExternalAPILogger {
	return GetGlobalLoggers().ExternalAPI
}

func Cache() CacheLogger {
	return GetGlobalLoggers().Cache
}

func Business() BusinessLogger {
	return GetGlobalLoggers().Business
}

func Warming() WarmingLogger {
	return GetGlobalLoggers().Warming
}
