package logging

import (
	"context"
)

// Logger define la interfaz principal para logging estructurado
type Logger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	InfoWithError(ctx context.Context, message string, err error, fields Fields)
	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger representa loggers especializados por dominio
type DomainLogger interface {
	Logger
	Domain() string
}

// HTTPLogger especializado para logs relacionados con HTTP
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64)
}

// ExternalAPILogger especializado para logs de APIs externas
type ExternalAPILogger interface {
	DomainLogger

	RequestStarted(ctx context.Context, service, endpoint, method string)
	RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, duration float64)
}

// CacheLogger especializado para logs de las caches nombradas
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, cacheName, key string)
	Miss(ctx context.Context, cacheName, key string)
	Set(ctx context.Context, cacheName, key string, ttlSeconds float64)
	Delete(ctx context.Context, cacheName, key string)
	Evicted(ctx context.Context, cacheName, key string)
	Flushed(ctx context.Context, cacheName string, removed int)
	Pruned(ctx context.Context, cacheName string, removed int)
	CacheError(ctx context.Context, operation, cacheName string, err error)
}

// BusinessLogger especializado para el resolver de cotizaciones
type BusinessLogger interface {
	DomainLogger

	RatesRequested(ctx context.Context, operation, date string)
	RatesServed(ctx context.Context, operation, effectiveDate string, records int, source string, fromPreviousDate bool)
	FallbackStep(ctx context.Context, date string, attempt int, reason string)
	UpstreamFetchFailed(ctx context.Context, operation, subject string, err error)
	ValidationFailed(ctx context.Context, input string, reason string)
}

// WarmingLogger especializado para el scheduler de precalentamiento
type WarmingLogger interface {
	DomainLogger

	SweepStarted(ctx context.Context, sweepID string, jobs int)
	SweepCompleted(ctx context.Context, sweepID string, failed int, duration float64)
	SweepSkipped(ctx context.Context, reason string)
	JobStarted(ctx context.Context, jobID string)
	JobCompleted(ctx context.Context, jobID string, duration float64, fields Fields)
	JobFailed(ctx context.Context, jobID string, err error, duration float64)
}
