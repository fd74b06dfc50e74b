package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
cache:
  rates:
    capacity: 42
    ttl: 2h
resolver:
  major_currencies: ["USD", "EUR"]
warming:
  interval: 45m
`)

	cfg, err := NewLoaderWithFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Cache.Rates.Capacity)
	assert.Equal(t, 2*time.Hour, cfg.Cache.Rates.TTL)
	assert.Equal(t, []string{"USD", "EUR"}, cfg.Resolver.MajorCurrencies)
	assert.Equal(t, 45*time.Minute, cfg.Warming.Interval)

	// Lo no especificado mantiene el default
	assert.Equal(t, 200, cfg.Cache.Historical.Capacity)
	assert.Equal(t, "https://api.nbp.pl/api", cfg.Upstream.NBP.BaseURL)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
logging:
  level: info
`)

	t.Setenv("FX_RATES_SERVER_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FX_RATES_CACHE_METADATA_TTL", "12h")
	t.Setenv("MAJOR_CURRENCIES", "usd, gbp ,")
	t.Setenv("MOCK_MODE", "1")

	cfg, err := NewLoaderWithFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 12*time.Hour, cfg.Cache.Metadata.TTL)
	assert.Equal(t, []string{"USD", "GBP"}, cfg.Resolver.MajorCurrencies)
	assert.True(t, cfg.Development.MockMode)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoaderWithFile(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)

	def := GetDefaultConfig()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.Cache, cfg.Cache)
	assert.Equal(t, def.Warming, cfg.Warming)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [port: 1\n")

	_, err := NewLoaderWithFile(path).Load()
	assert.Error(t, err)
}

func TestLoader_LoadForEnvironmentMergesOverlay(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
server:
  port: 9000
logging:
  level: info
resolver:
  major_currencies: [USD, EUR, CHF, GBP, JPY]
warming:
  interval: 45m
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.yaml"), []byte(`
logging:
  level: debug
resolver:
  major_currencies: [USD]
warming:
  enabled: false
`), 0o600))

	cfg, err := NewLoaderWithFile(base).LoadForEnvironment("test")
	require.NoError(t, err)

	// Del overlay
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"USD"}, cfg.Resolver.MajorCurrencies)
	assert.False(t, cfg.Warming.Enabled)

	// Del base
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45*time.Minute, cfg.Warming.Interval)

	// Defaults
	assert.Equal(t, 200, cfg.Cache.Historical.Capacity)
}

func TestLoader_LoadForEnvironmentEnvStillWins(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(base, []byte("server:\n  port: 9000\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte("server:\n  port: 9001\n"), 0o600))

	t.Setenv("FX_RATES_SERVER_PORT", "9500")

	cfg, err := NewLoaderWithFile(base).LoadForEnvironment("staging")
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.Server.Port)
}

func TestLoader_LoadForEnvironmentWithoutOverlay(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")

	cfg, err := NewLoaderWithFile(path).LoadForEnvironment("production")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoader_LoadForEnvironmentInvalidOverlay(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "config.test.yaml"), []byte("server: [port: 1\n"), 0o600))

	_, err := NewLoaderWithFile(path).LoadForEnvironment("test")
	assert.Error(t, err)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Staging")
	assert.Equal(t, "staging", GetEnvironment())

	t.Setenv("ENV", "production")
	assert.Equal(t, "production", GetEnvironment())
}
