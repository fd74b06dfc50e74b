package logging

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StructuredLogger implementa la interfaz Logger sobre zerolog
type StructuredLogger struct {
	mu     sync.RWMutex
	config *LoggerConfig
	zl     zerolog.Logger
}

// NewStructuredLogger crea un nuevo logger estructurado
func NewStructuredLogger(config *LoggerConfig) (*StructuredLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	return &StructuredLogger{
		config: config,
		zl:     newZerolog(config),
	}, nil
}

// newZerolog arma el logger base con los campos fijos del servicio
func newZerolog(config *LoggerConfig) zerolog.Logger {
	output := config.Output
	if config.Format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	zctx := zerolog.New(output).With().
		Timestamp().
		Str(FieldService, config.Service)
	if config.Version != "" {
		zctx = zctx.Str(FieldVersion, config.Version)
	}
	if config.Environment != "" {
		zctx = zctx.Str("environment", config.Environment)
	}

	return zctx.Logger().Level(toZerologLevel(config.Level))
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// log escribe una entrada de log estructurada
func (sl *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	sl.mu.RLock()
	zl := sl.zl
	addSource := sl.config.AddSource
	sl.mu.RUnlock()

	event := zl.WithLevel(toZerologLevel(level))
	if event == nil {
		return
	}

	if ctx != nil {
		if requestID := GetRequestID(ctx); requestID != "" {
			event = event.Str(FieldRequestID, requestID)
		}
		// Duración acumulada del request si hay tiempo de inicio en el contexto
		if startTime := GetStartTime(ctx); !startTime.IsZero() {
			event = event.Float64(FieldDuration, float64(time.Since(startTime).Nanoseconds())/1e6)
		}
	}

	if addSource {
		if source := getSource(); source != "" {
			event = event.Str("source", source)
		}
	}

	if len(fields) > 0 {
		event = event.Fields(map[string]interface{}(fields))
	}

	event.Msg(message)
}

// getSource obtiene la función que llamó al logger
func getSource() string {
	// Skip: getSource, log, método público, wrapper global
	const skip = 4
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return name
}

func (sl *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelDebug, message, fields)
}

func (sl *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelInfo, message, fields)
}

func (sl *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelWarn, message, fields)
}

func (sl *StructuredLogger) Error(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelError, message, fields)
}

// InfoWithError logs an info message with error details
func (sl *StructuredLogger) InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelInfo, message, enrichWithError(fields, err))
}

// WarnWithError logs a warning message with error details
func (sl *StructuredLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelWarn, message, enrichWithError(fields, err))
}

// ErrorWithError logs an error message with error details
func (sl *StructuredLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelError, message, enrichWithError(fields, err))
}

// enrichWithError copia los campos y agrega la información del error
func enrichWithError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}

	enriched := make(Fields, len(fields)+2)
	for k, v := range fields {
		enriched[k] = v
	}
	enriched[FieldError] = err.Error()
	enriched[FieldErrorType] = getErrorType(err)
	return enriched
}

// SetLevel establece el nivel de logging
func (sl *StructuredLogger) SetLevel(level LogLevel) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.config.Level = level
	sl.zl = sl.zl.Level(toZerologLevel(level))
}

func (sl *StructuredLogger) GetLevel() LogLevel {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.config.Level
}

func (sl *StructuredLogger) GetConfig() *LoggerConfig {
	return sl.config
}
