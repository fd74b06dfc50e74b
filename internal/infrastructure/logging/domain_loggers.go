package logging

import (
	"context"
)

// BaseDomainLogger implementa funcionalidad común para loggers de dominio
type BaseDomainLogger struct {
	Logger
	domain string
}

func (dl *BaseDomainLogger) Domain() string {
	return dl.domain
}

// withDomain copia los campos agregando el dominio
func (dl *BaseDomainLogger) withDomain(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldDomain] = dl.domain
	return out
}

func (dl *BaseDomainLogger) logWithDomain(ctx context.Context, level LogLevel, message string, fields Fields) {
	fields = dl.withDomain(fields)

	switch level {
	case LevelDebug:
		dl.Logger.Debug(ctx, message, fields)
	case LevelInfo:
		dl.Logger.Info(ctx, message, fields)
	case LevelWarn:
		dl.Logger.Warn(ctx, message, fields)
	case LevelError:
		dl.Logger.Error(ctx, message, fields)
	}
}

func (dl *BaseDomainLogger) Debug(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelDebug, message, fields)
}

func (dl *BaseDomainLogger) Info(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelInfo, message, fields)
}

func (dl *BaseDomainLogger) Warn(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelWarn, message, fields)
}

func (dl *BaseDomainLogger) Error(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelError, message, fields)
}

func (dl *BaseDomainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.WarnWithError(ctx, message, err, dl.withDomain(fields))
}

func (dl *BaseDomainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.ErrorWithError(ctx, message, err, dl.withDomain(fields))
}

// levelForStatus elige el nivel según el código HTTP
func levelForStatus(statusCode int) LogLevel {
	switch {
	case statusCode >= 500:
		return LevelError
	case statusCode >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// HTTPDomainLogger especializado para logs HTTP
type HTTPDomainLogger struct {
	*BaseDomainLogger
}

func NewHTTPLogger(baseLogger Logger) HTTPLogger {
	return &HTTPDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "http"},
	}
}

func (hl *HTTPDomainLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, 0).
		WithUserAgent(userAgent).
		WithRemoteIP(remoteIP).
		Build()

	hl.Debug(ctx, "HTTP request received", fields)
}

func (hl *HTTPDomainLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.logWithDomain(ctx, levelForStatus(statusCode), "HTTP request completed", fields)
}

func (hl *HTTPDomainLogger) RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.ErrorWithError(ctx, "HTTP request failed", err, fields)
}

// ExternalAPIDomainLogger especializado para APIs externas
type ExternalAPIDomainLogger struct {
	*BaseDomainLogger
}

func NewExternalAPILogger(baseLogger Logger) ExternalAPILogger {
	return &ExternalAPIDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "external_api"},
	}
}

func (el *ExternalAPIDomainLogger) RequestStarted(ctx context.Context, service, endpoint, method string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalMethod, method).
		Build()

	el.Debug(ctx, "External API request started", fields)
}

func (el *ExternalAPIDomainLogger) RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalStatus, statusCode).
		WithCustomField(FieldExternalDuration, duration).
		Build()

	el.logWithDomain(ctx, levelForStatus(statusCode), "External API request completed", fields)
}

func (el *ExternalAPIDomainLogger) RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, duration float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalStatus, statusCode).
		WithCustomField(FieldExternalDuration, duration).
		Build()

	el.WarnWithError(ctx, "External API request failed", err, fields)
}

// CacheDomainLogger especializado para cache
type CacheDomainLogger struct {
	*BaseDomainLogger
}

func NewCacheLogger(baseLogger Logger) CacheLogger {
	return &CacheDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "cache"},
	}
}

func (cl *CacheDomainLogger) Hit(ctx context.Context, cacheName, key string) {
	cl.Debug(ctx, "Cache hit", NewFieldBuilder().WithCache(cacheName, CacheOpGet, key, true).Build())
}

func (cl *CacheDomainLogger) Miss(ctx context.Context, cacheName, key string) {
	cl.Debug(ctx, "Cache miss", NewFieldBuilder().WithCache(cacheName, CacheOpGet, key, false).Build())
}

func (cl *CacheDomainLogger) Set(ctx context.Context, cacheName, key string, ttlSeconds float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheName, cacheName).
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheOperation, CacheOpSet).
		WithCustomField(FieldCacheTTL, ttlSeconds).
		Build()

	cl.Debug(ctx, "Cache set", fields)
}

func (cl *CacheDomainLogger) Delete(ctx context.Context, cacheName, key string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheName, cacheName).
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheOperation, CacheOpDelete).
		Build()

	cl.Debug(ctx, "Cache delete", fields)
}

func (cl *CacheDomainLogger) Evicted(ctx context.Context, cacheName, key string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheName, cacheName).
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheOperation, CacheOpEvict).
		Build()

	cl.Debug(ctx, "Cache entry evicted by capacity", fields)
}

func (cl *CacheDomainLogger) Flushed(ctx context.Context, cacheName string, removed int) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheName, cacheName).
		WithCustomField(FieldCacheOperation, CacheOpFlush).
		WithCustomField(FieldCacheCount, removed).
		Build()

	cl.Info(ctx, "Cache flushed", fields)
}

func (cl *CacheDomainLogger) Pruned(ctx context.Context, cacheName string, removed int) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheName, cacheName).
		WithCustomField(FieldCacheOperation, CacheOpPrune).
		WithCustomField(FieldCacheCount, removed).
		Build()

	cl.Debug(ctx, "Cache pruned", fields)
}

func (cl *CacheDomainLogger) CacheError(ctx context.Context, operation, cacheName string, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheOperation, operation).
		WithCustomField(FieldCacheName, cacheName).
		Build()

	cl.WarnWithError(ctx, "Cache operation failed", err, fields)
}

// BusinessDomainLogger especializado para el resolver
type BusinessDomainLogger struct {
	*BaseDomainLogger
}

func NewBusinessLogger(baseLogger Logger) BusinessLogger {
	return &BusinessDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "business"},
	}
}

func (bl *BusinessDomainLogger) RatesRequested(ctx context.Context, operation, date string) {
	fields := NewFieldBuilder().
		WithCustomField("operation", operation).
		WithCustomField(FieldDate, date).
		Build()

	bl.Debug(ctx, "Rates requested", fields)
}

func (bl *BusinessDomainLogger) RatesServed(ctx context.Context, operation, effectiveDate string, records int, source string, fromPreviousDate bool) {
	fields := NewFieldBuilder().
		WithCustomField("operation", operation).
		WithCustomField(FieldEffectiveDate, effectiveDate).
		WithCustomField(FieldRecords, records).
		WithCustomField(FieldSource, source).
		WithCustomField("from_previous_date", fromPreviousDate).
		Build()

	bl.Info(ctx, "Rates served", fields)
}

func (bl *BusinessDomainLogger) FallbackStep(ctx context.Context, date string, attempt int, reason string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldDate, date).
		WithCustomField(FieldAttempt, attempt).
		WithCustomField("reason", reason).
		Build()

	bl.Debug(ctx, "No rates for date, stepping back", fields)
}

func (bl *BusinessDomainLogger) UpstreamFetchFailed(ctx context.Context, operation, subject string, err error) {
	fields := NewFieldBuilder().
		WithCustomField("operation", operation).
		WithCustomField("subject", subject).
		Build()

	bl.WarnWithError(ctx, "Upstream fetch failed", err, fields)
}

func (bl *BusinessDomainLogger) ValidationFailed(ctx context.Context, input string, reason string) {
	fields := NewFieldBuilder().
		WithCustomField("input", input).
		WithCustomField("reason", reason).
		WithCustomField(FieldValidation, "failed").
		Build()

	bl.Warn(ctx, "Input validation failed", fields)
}

// WarmingDomainLogger especializado para el scheduler
type WarmingDomainLogger struct {
	*BaseDomainLogger
}

func NewWarmingLogger(baseLogger Logger) WarmingLogger {
	return &WarmingDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "warming"},
	}
}

func (wl *WarmingDomainLogger) SweepStarted(ctx context.Context, sweepID string, jobs int) {
	wl.Info(ctx, "Cache warming sweep started", Fields{FieldSweepID: sweepID, "jobs": jobs})
}

func (wl *WarmingDomainLogger) SweepCompleted(ctx context.Context, sweepID string, failed int, duration float64) {
	fields := Fields{FieldSweepID: sweepID, "failed_jobs": failed, FieldDuration: duration}
	if failed > 0 {
		wl.Warn(ctx, "Cache warming sweep completed with failures", fields)
		return
	}
	wl.Info(ctx, "Cache warming sweep completed", fields)
}

func (wl *WarmingDomainLogger) SweepSkipped(ctx context.Context, reason string) {
	wl.Info(ctx, "Cache warming sweep skipped", Fields{"reason": reason})
}

func (wl *WarmingDomainLogger) JobStarted(ctx context.Context, jobID string) {
	wl.Debug(ctx, "Warming job started", Fields{FieldJobID: jobID})
}

func (wl *WarmingDomainLogger) JobCompleted(ctx context.Context, jobID string, duration float64, fields Fields) {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldJobID] = jobID
	out[FieldDuration] = duration
	wl.Info(ctx, "Warming job completed", out)
}

func (wl *WarmingDomainLogger) JobFailed(ctx context.Context, jobID string, err error, duration float64) {
	wl.ErrorWithError(ctx, "Warming job failed", err, Fields{FieldJobID: jobID, FieldDuration: duration})
}
