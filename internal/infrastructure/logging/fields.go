package logging

import (
	"context"
	"fmt"
	"time"
)

// Fields representa campos estructurados para logs
type Fields map[string]interface{}

// LogLevel representa los diferentes niveles de log
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Campos estándar para logs
const (
	FieldRequestID  = "request_id"
	FieldService    = "service"
	FieldVersion    = "version"
	FieldDomain     = "domain"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldDuration   = "duration_ms"
	FieldStatusCode = "status_code"
)

// Campos para contexto de requests
const (
	FieldHTTPMethod     = "http_method"
	FieldHTTPPath       = "http_path"
	FieldHTTPStatusCode = "http_status_code"
	FieldHTTPUserAgent  = "http_user_agent"
	FieldHTTPRemoteIP   = "http_remote_ip"
)

// Campos para APIs externas
const (
	FieldExternalService  = "external_service"
	FieldExternalEndpoint = "external_endpoint"
	FieldExternalMethod   = "external_method"
	FieldExternalStatus   = "external_status_code"
	FieldExternalDuration = "external_duration_ms"
)

// Campos para cache
const (
	FieldCacheName      = "cache_name"
	FieldCacheOperation = "cache_operation"
	FieldCacheKey       = "cache_key"
	FieldCacheHit       = "cache_hit"
	FieldCacheTTL       = "cache_ttl_seconds"
	FieldCacheCount     = "cache_count"
)

// Campos para cotizaciones
const (
	FieldCurrency      = "currency"
	FieldDate          = "date"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldEffectiveDate = "effective_date"
	FieldSource        = "source"
	FieldAttempt       = "attempt"
	FieldRecords       = "records"
	FieldValidation    = "validation"
)

// Campos para precalentamiento
const (
	FieldJobID     = "job_id"
	FieldJobStatus = "job_status"
	FieldSweepID   = "sweep_id"
)

// Operaciones de cache
const (
	CacheOpGet    = "GET"
	CacheOpSet    = "SET"
	CacheOpDelete = "DELETE"
	CacheOpFlush  = "FLUSH"
	CacheOpEvict  = "EVICT"
	CacheOpPrune  = "PRUNE"
)

// FieldBuilder ayuda a construir campos de manera estandarizada
type FieldBuilder struct {
	fields Fields
}

func NewFieldBuilder() *FieldBuilder {
	return &FieldBuilder{fields: make(Fields)}
}

func (fb *FieldBuilder) WithError(err error) *FieldBuilder {
	if err != nil {
		fb.fields[FieldError] = err.Error()
		fb.fields[FieldErrorType] = getErrorType(err)
	}
	return fb
}

// WithDuration añade duración en milliseconds
func (fb *FieldBuilder) WithDuration(duration time.Duration) *FieldBuilder {
	fb.fields[FieldDuration] = float64(duration.Nanoseconds()) / 1e6
	return fb
}

func (fb *FieldBuilder) WithHTTPInfo(method, path string, statusCode int) *FieldBuilder {
	fb.fields[FieldHTTPMethod] = method
	fb.fields[FieldHTTPPath] = path
	if statusCode > 0 {
		fb.fields[FieldHTTPStatusCode] = statusCode
	}
	return fb
}

func (fb *FieldBuilder) WithUserAgent(userAgent string) *FieldBuilder {
	if userAgent != "" {
		fb.fields[FieldHTTPUserAgent] = userAgent
	}
	return fb
}

func (fb *FieldBuilder) WithRemoteIP(ip string) *FieldBuilder {
	if ip != "" {
		fb.fields[FieldHTTPRemoteIP] = ip
	}
	return fb
}

func (fb *FieldBuilder) WithCache(cacheName, operation, key string, hit bool) *FieldBuilder {
	fb.fields[FieldCacheName] = cacheName
	fb.fields[FieldCacheOperation] = operation
	fb.fields[FieldCacheKey] = key
	fb.fields[FieldCacheHit] = hit
	return fb
}

// WithCustomField añade un campo personalizado; ignora claves vacías y valores nil
func (fb *FieldBuilder) WithCustomField(key string, value interface{}) *FieldBuilder {
	if key != "" && value != nil {
		fb.fields[key] = value
	}
	return fb
}

func (fb *FieldBuilder) Build() Fields {
	if len(fb.fields) == 0 {
		return nil
	}
	return fb.fields
}

// Context keys para información del request
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	StartTimeKey contextKey = "start_time"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, StartTimeKey, startTime)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// getErrorType extrae el tipo concreto del error
func getErrorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
