package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Upstream    UpstreamConfig    `yaml:"upstream" mapstructure:"upstream"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Warming     WarmingConfig     `yaml:"warming" mapstructure:"warming"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// CacheConfig contains the named caches configuration
type CacheConfig struct {
	PruneInterval time.Duration `yaml:"prune_interval" mapstructure:"prune_interval"`
	Rates         TierConfig    `yaml:"rates" mapstructure:"rates"`
	Historical    TierConfig    `yaml:"historical" mapstructure:"historical"`
	Metadata      TierConfig    `yaml:"metadata" mapstructure:"metadata"`
}

// TierConfig contains the limits of a single named cache
type TierConfig struct {
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// UpstreamConfig contains external API configuration
type UpstreamConfig struct {
	NBP     NBPConfig     `yaml:"nbp" mapstructure:"nbp"`
	TimeAPI TimeAPIConfig `yaml:"time_api" mapstructure:"time_api"`
}

// NBPConfig contains NBP-specific configuration
type NBPConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Table             string        `yaml:"table" mapstructure:"table"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond int           `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// TimeAPIConfig contains the external clock configuration
type TimeAPIConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	URL             string        `yaml:"url" mapstructure:"url"`
	Timezone        string        `yaml:"timezone" mapstructure:"timezone"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// ResolverConfig contains date-fallback resolver limits
type ResolverConfig struct {
	MaxLookbackDays int      `yaml:"max_lookback_days" mapstructure:"max_lookback_days"`
	MaxRangeDays    int      `yaml:"max_range_days" mapstructure:"max_range_days"`
	MajorCurrencies []string `yaml:"major_currencies" mapstructure:"major_currencies"`
}

// WarmingConfig contains cache-warming scheduler configuration
type WarmingConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	InitialDelay    time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`
	Interval        time.Duration `yaml:"interval" mapstructure:"interval"`
	HistoricalDays  int           `yaml:"historical_days" mapstructure:"historical_days"`
	CurrencyListTTL time.Duration `yaml:"currency_list_ttl" mapstructure:"currency_list_ttl"`
	CurrentRatesTTL time.Duration `yaml:"current_rates_ttl" mapstructure:"current_rates_ttl"`
	HistoricalTTL   time.Duration `yaml:"historical_ttl" mapstructure:"historical_ttl"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int  `yaml:"capacity" mapstructure:"capacity"`
	RefillRate int  `yaml:"refill_rate" mapstructure:"refill_rate"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DevelopmentConfig contiene configuraciones para desarrollo y testing
type DevelopmentConfig struct {
	MockMode  bool `yaml:"mock_mode" mapstructure:"mock_mode"`
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"`
	DevMode   bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			PruneInterval: 6 * time.Hour,
			Rates:         TierConfig{Capacity: 500, TTL: time.Hour},
			Historical:    TierConfig{Capacity: 200, TTL: 24 * time.Hour},
			Metadata:      TierConfig{Capacity: 50, TTL: 24 * time.Hour},
		},
		Upstream: UpstreamConfig{
			NBP: NBPConfig{
				BaseURL:           "https://api.nbp.pl/api",
				Table:             "C",
				Timeout:           15 * time.Second,
				RequestTimeout:    10 * time.Second,
				MaxRetries:        3,
				RequestsPerSecond: 10,
				Burst:             10,
			},
			TimeAPI: TimeAPIConfig{
				Enabled:         true,
				URL:             "https://worldtimeapi.org/api/timezone",
				Timezone:        "Europe/Warsaw",
				Timeout:         3 * time.Second,
				RefreshInterval: time.Hour,
			},
		},
		Resolver: ResolverConfig{
			MaxLookbackDays: 7,
			MaxRangeDays:    93,
			MajorCurrencies: []string{"USD", "EUR", "CHF", "GBP", "JPY"},
		},
		Warming: WarmingConfig{
			Enabled:         true,
			InitialDelay:    5 * time.Second,
			Interval:        30 * time.Minute,
			HistoricalDays:  7,
			CurrencyListTTL: 24 * time.Hour,
			CurrentRatesTTL: time.Hour,
			HistoricalTTL:   7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   100,
			RefillRate: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Development: DevelopmentConfig{
			MockMode:  false,
			DebugMode: false,
			DevMode:   false,
		},
	}
}
