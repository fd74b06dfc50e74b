package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream, config.Development); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	if err := v.validateResolver(config.Resolver); err != nil {
		return fmt.Errorf("resolver config validation failed: %w", err)
	}

	if err := v.validateWarming(config.Warming); err != nil {
		return fmt.Errorf("warming config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	if config.ReadTimeout < 0 || config.WriteTimeout < 0 {
		return fmt.Errorf("read_timeout and write_timeout cannot be negative")
	}

	return nil
}

// validateCache valida la configuración de las caches nombradas
func (v *Validator) validateCache(config CacheConfig) error {
	tiers := []struct {
		name string
		tier TierConfig
	}{
		{"rates", config.Rates},
		{"historical", config.Historical},
		{"metadata", config.Metadata},
	}

	for _, t := range tiers {
		if err := v.validateTier(t.name, t.tier); err != nil {
			return err
		}
	}

	if config.PruneInterval < 0 {
		return fmt.Errorf("prune_interval cannot be negative, got: %v", config.PruneInterval)
	}

	return nil
}

// validateTier valida capacidad y TTL de una cache
func (v *Validator) validateTier(name string, tier TierConfig) error {
	if tier.Capacity <= 0 {
		return fmt.Errorf("cache %s capacity must be positive, got: %d", name, tier.Capacity)
	}

	if tier.Capacity > 100000 {
		return fmt.Errorf("cache %s capacity too high: %d, max 100000", name, tier.Capacity)
	}

	return v.validateTTL(name, tier.TTL)
}

// validateTTL valida un TTL de cache
func (v *Validator) validateTTL(name string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache %s TTL must be positive, got: %v", name, ttl)
	}

	if ttl < time.Second {
		return fmt.Errorf("cache %s TTL too short: %v, min 1 second", name, ttl)
	}

	if ttl > 30*24*time.Hour {
		return fmt.Errorf("cache %s TTL too long: %v, max 30 days", name, ttl)
	}

	return nil
}

// validateUpstream valida la configuración de las APIs externas
func (v *Validator) validateUpstream(config UpstreamConfig, dev DevelopmentConfig) error {
	// En mock mode no se contacta a NBP
	if !dev.MockMode {
		if err := v.validateNBP(config.NBP); err != nil {
			return err
		}
	}

	if config.TimeAPI.Enabled {
		if err := v.validateURL(config.TimeAPI.URL, "time_api url"); err != nil {
			return err
		}

		if config.TimeAPI.Timezone == "" {
			return fmt.Errorf("time_api timezone cannot be empty")
		}

		if config.TimeAPI.Timeout <= 0 {
			return fmt.Errorf("time_api timeout must be positive, got: %v", config.TimeAPI.Timeout)
		}
	}

	return nil
}

// validateNBP valida la configuración específica de NBP
func (v *Validator) validateNBP(config NBPConfig) error {
	if err := v.validateURL(config.BaseURL, "nbp base_url"); err != nil {
		return err
	}

	if !contains([]string{"A", "B", "C"}, config.Table) {
		return fmt.Errorf("invalid nbp table: %s, must be one of A, B, C", config.Table)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("nbp timeout must be positive, got: %v", config.Timeout)
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("nbp request_timeout must be positive, got: %v", config.RequestTimeout)
	}

	if config.RequestTimeout > config.Timeout {
		return fmt.Errorf("nbp request_timeout (%v) should not exceed timeout (%v)", config.RequestTimeout, config.Timeout)
	}

	if config.MaxRetries < 1 || config.MaxRetries > 10 {
		return fmt.Errorf("nbp max_retries must be between 1-10, got: %d", config.MaxRetries)
	}

	if config.RequestsPerSecond <= 0 || config.Burst <= 0 {
		return fmt.Errorf("nbp requests_per_second and burst must be positive, got: %d/%d", config.RequestsPerSecond, config.Burst)
	}

	return nil
}

// validateResolver valida los límites del resolver
func (v *Validator) validateResolver(config ResolverConfig) error {
	if config.MaxLookbackDays < 1 || config.MaxLookbackDays > 31 {
		return fmt.Errorf("max_lookback_days must be between 1-31, got: %d", config.MaxLookbackDays)
	}

	if config.MaxRangeDays < 1 || config.MaxRangeDays > 367 {
		return fmt.Errorf("max_range_days must be between 1-367, got: %d", config.MaxRangeDays)
	}

	if len(config.MajorCurrencies) == 0 {
		return fmt.Errorf("major_currencies cannot be empty")
	}

	for _, code := range config.MajorCurrencies {
		if len(code) != 3 {
			return fmt.Errorf("invalid currency code: %q, expected 3 letters", code)
		}
	}

	return nil
}

// validateWarming valida la configuración del scheduler
func (v *Validator) validateWarming(config WarmingConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Interval < time.Minute {
		return fmt.Errorf("warming interval too short: %v, min 1 minute", config.Interval)
	}

	if config.InitialDelay < 0 {
		return fmt.Errorf("warming initial_delay cannot be negative, got: %v", config.InitialDelay)
	}

	if config.HistoricalDays < 1 {
		return fmt.Errorf("warming historical_days must be positive, got: %d", config.HistoricalDays)
	}

	for name, ttl := range map[string]time.Duration{
		"currency_list_ttl": config.CurrencyListTTL,
		"current_rates_ttl": config.CurrentRatesTTL,
		"historical_ttl":    config.HistoricalTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("warming %s must be positive, got: %v", name, ttl)
		}
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if config.Enabled {
		if config.Capacity <= 0 {
			return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
		}

		if config.RefillRate <= 0 {
			return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %d", config.RefillRate)
		}

		if config.Capacity > 10000 {
			return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
		}

		if config.RefillRate > 1000 {
			return fmt.Errorf("rate_limit refill_rate too high: %d, max 1000", config.RefillRate)
		}
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(config.Level)) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, strings.ToLower(config.Format)) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
