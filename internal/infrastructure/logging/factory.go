package logging

import (
	"fmt"
	"sync"
)

// LoggerFactory facilita la creación de los loggers de dominio
type LoggerFactory struct {
	baseLogger Logger
}

// NewLoggerFactory crea una nueva factory de loggers
func NewLoggerFactory(config *LoggerConfig) (*LoggerFactory, error) {
	baseLogger, err := NewStructuredLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create base logger: %w", err)
	}

	return &LoggerFactory{baseLogger: baseLogger}, nil
}

func (f *LoggerFactory) GetBaseLogger() Logger {
	return f.baseLogger
}

// LoggerSet contiene todos los loggers especializados
type LoggerSet struct {
	Base        Logger
	HTTP        HTTPLogger
	ExternalAPI ExternalAPILogger
	Cache       CacheLogger
	Business    BusinessLogger
	Warming     WarmingLogger
}

// GetLoggerSet retorna un set completo de loggers especializados
func (f *LoggerFactory) GetLoggerSet() *LoggerSet {
	return &LoggerSet{
		Base:        f.baseLogger,
		HTTP:        NewHTTPLogger(f.baseLogger),
		ExternalAPI: NewExternalAPILogger(f.baseLogger),
		Cache:       NewCacheLogger(f.baseLogger),
		Business:    NewBusinessLogger(f.baseLogger),
		Warming:     NewWarmingLogger(f.baseLogger),
	}
}

var (
	globalMu      sync.RWMutex
	globalLoggers *LoggerSet
)

// InitializeGlobalLoggers inicializa los loggers globales
func InitializeGlobalLoggers(config *LoggerConfig) error {
	factory, err := NewLoggerFactory(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global loggers: %w", err)
	}

	globalMu.Lock()
	globalLoggers = factory.GetLoggerSet()
	globalMu.Unlock()
	return nil
}

// GetGlobalLoggers retorna todos los loggers globales, inicializando con defaults si hace falta
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	set := globalLoggers
	globalMu.RUnlock()
	if set != nil {
		return set
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLoggers == nil {
		factory, _ := NewLoggerFactory(DefaultConfig())
		globalLoggers = factory.GetLoggerSet()
	}
	return globalLoggers
}

func GetGlobalLogger() Logger {
	return GetGlobalLoggers().Base
}

// SetGlobalLogLevel actualiza el nivel de log global
func SetGlobalLogLevel(level LogLevel) {
	GetGlobalLogger().SetLevel(level)
}

// NewDevelopmentConfig crea una configuración para desarrollo
func NewDevelopmentConfig(service string) *LoggerConfig {
	return NewConfig(service, "dev", "development").
		WithLevel(LevelDebug).
		WithFormat(FormatText).
		WithSource(true)
}

// NewProductionConfig crea una configuración para producción
func NewProductionConfig(service, version string) *LoggerConfig {
	return NewConfig(service, version, "production").
		WithLevel(LevelInfo).
		WithFormat(FormatJSON)
}
