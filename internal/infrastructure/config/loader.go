package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// NewLoaderWithFile creates a loader bound to an explicit config file
func NewLoaderWithFile(path string) *Loader {
	l := NewLoader()
	l.v.SetConfigFile(path)
	return l
}

// Load loads configuration from files and environment variables
func (l *Loader) Load() (*Config, error) {
	// 1. Configure Viper
	l.setupViper()

	// 2. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		// Sin config.yaml se usan solo env vars y defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Unmarshall a struct
	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 4. Override with specific env vars
	l.overrideWithEnvVars(config)

	return config, nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	if l.v.ConfigFileUsed() == "" {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")

		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("../configs")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/fx-rates")
	}

	// Automatic environment variables: FX_RATES_SERVER_PORT, FX_RATES_CACHE_RATES_TTL...
	l.v.AutomaticEnv()
	l.v.SetEnvPrefix("FX_RATES")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv solo resuelve claves conocidas por viper
	l.registerDefaults(GetDefaultConfig())
	l.bindEnvVars()
}

// registerDefaults registra cada clave de la config por defecto para que las env vars con prefijo apliquen
func (l *Loader) registerDefaults(def *Config) {
	defaults := map[string]interface{}{
		"server.port":                        def.Server.Port,
		"server.read_timeout":                def.Server.ReadTimeout,
		"server.write_timeout":               def.Server.WriteTimeout,
		"server.shutdown_timeout":            def.Server.ShutdownTimeout,
		"cache.prune_interval":               def.Cache.PruneInterval,
		"cache.rates.capacity":               def.Cache.Rates.Capacity,
		"cache.rates.ttl":                    def.Cache.Rates.TTL,
		"cache.historical.capacity":          def.Cache.Historical.Capacity,
		"cache.historical.ttl":               def.Cache.Historical.TTL,
		"cache.metadata.capacity":            def.Cache.Metadata.Capacity,
		"cache.metadata.ttl":                 def.Cache.Metadata.TTL,
		"upstream.nbp.base_url":              def.Upstream.NBP.BaseURL,
		"upstream.nbp.table":                 def.Upstream.NBP.Table,
		"upstream.nbp.timeout":               def.Upstream.NBP.Timeout,
		"upstream.nbp.request_timeout":       def.Upstream.NBP.RequestTimeout,
		"upstream.nbp.max_retries":           def.Upstream.NBP.MaxRetries,
		"upstream.nbp.requests_per_second":   def.Upstream.NBP.RequestsPerSecond,
		"upstream.nbp.burst":                 def.Upstream.NBP.Burst,
		"upstream.time_api.enabled":          def.Upstream.TimeAPI.Enabled,
		"upstream.time_api.url":              def.Upstream.TimeAPI.URL,
		"upstream.time_api.timezone":         def.Upstream.TimeAPI.Timezone,
		"upstream.time_api.timeout":          def.Upstream.TimeAPI.Timeout,
		"upstream.time_api.refresh_interval": def.Upstream.TimeAPI.RefreshInterval,
		"resolver.max_lookback_days":         def.Resolver.MaxLookbackDays,
		"resolver.max_range_days":            def.Resolver.MaxRangeDays,
		"resolver.major_currencies":          def.Resolver.MajorCurrencies,
		"warming.enabled":                    def.Warming.Enabled,
		"warming.initial_delay":              def.Warming.InitialDelay,
		"warming.interval":                   def.Warming.Interval,
		"warming.historical_days":            def.Warming.HistoricalDays,
		"warming.currency_list_ttl":          def.Warming.CurrencyListTTL,
		"warming.current_rates_ttl":          def.Warming.CurrentRatesTTL,
		"warming.historical_ttl":             def.Warming.HistoricalTTL,
		"rate_limit.enabled":                 def.RateLimit.Enabled,
		"rate_limit.capacity":                def.RateLimit.Capacity,
		"rate_limit.refill_rate":             def.RateLimit.RefillRate,
		"logging.level":                      def.Logging.Level,
		"logging.format":                     def.Logging.Format,
		"development.mock_mode":              def.Development.MockMode,
		"development.debug_mode":             def.Development.DebugMode,
		"development.dev_mode":               def.Development.DevMode,
	}

	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// bindEnvVars maps specific environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":               "PORT",
		"cache.prune_interval":      "CACHE_PRUNE_INTERVAL",
		"upstream.nbp.base_url":     "NBP_BASE_URL",
		"upstream.nbp.timeout":      "NBP_TIMEOUT",
		"upstream.nbp.max_retries":  "NBP_MAX_RETRIES",
		"upstream.time_api.url":     "TIME_API_URL",
		"upstream.time_api.enabled": "TIME_API_ENABLED",
		"warming.enabled":           "WARMING_ENABLED",
		"warming.interval":          "WARMING_INTERVAL",
		"warming.initial_delay":     "WARMING_INITIAL_DELAY",
		"logging.level":             "LOG_LEVEL",
		"logging.format":            "LOG_FORMAT",
		"rate_limit.capacity":       "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate":    "RATE_LIMIT_REFILL_RATE",
		"rate_limit.enabled":        "RATE_LIMIT_ENABLED",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, "FX_RATES_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(configKey)), envVar)
	}
}

// overrideWithEnvVars maneja casos especiales de env vars
func (l *Loader) overrideWithEnvVars(config *Config) {
	// MAJOR_CURRENCIES como string separado por comas
	if majorEnv := os.Getenv("MAJOR_CURRENCIES"); majorEnv != "" {
		var codes []string
		for _, code := range strings.Split(majorEnv, ",") {
			code = strings.TrimSpace(strings.ToUpper(code))
			if code != "" {
				codes = append(codes, code)
			}
		}

		if len(codes) > 0 {
			config.Resolver.MajorCurrencies = codes
		}
	}

	// Development mode env vars
	if devMode := os.Getenv("DEV_MODE"); devMode == "true" || devMode == "1" {
		config.Development.DevMode = true
	}
	if mockMode := os.Getenv("MOCK_MODE"); mockMode == "true" || mockMode == "1" {
		config.Development.MockMode = true
	}
	if debugMode := os.Getenv("DEBUG_MODE"); debugMode == "true" || debugMode == "1" {
		config.Development.DebugMode = true
	}
}

// LoadForEnvironment loads the base config and merges config.<environment>.yaml
// from the same directory when it exists
func (l *Loader) LoadForEnvironment(environment string) (*Config, error) {
	// Load base config first
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	base := l.v.ConfigFileUsed()
	if environment == "" || base == "" {
		return config, nil
	}

	overlay := environmentFile(base, environment)
	if _, err := os.Stat(overlay); err != nil {
		// Not a critical error if environment file doesn't exist
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to stat environment config: %w", err)
	}

	l.v.SetConfigFile(overlay)
	if err := l.v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to merge environment config %s: %w", overlay, err)
	}

	// Re-unmarshal sobre defaults limpios: las listas del overlay reemplazan a las del base
	merged := GetDefaultConfig()
	if err := l.v.Unmarshal(merged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged config: %w", err)
	}

	// Re-apply env var overrides
	l.overrideWithEnvVars(merged)

	return merged, nil
}

// environmentFile deriva configs/config.yaml -> configs/config.<environment>.yaml
func environmentFile(base, environment string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + environment + ext
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development" // Default
	}
	return env
}
