package cache

import (
	"time"

	"fx-rates-service/internal/domain/entities"
)

// TierConfig es la configuración de una cache nombrada
type TierConfig struct {
	Capacity   int
	DefaultTTL time.Duration
}

// Config agrupa las tres caches del servicio
type Config struct {
	Rates      TierConfig
	Historical TierConfig
	Metadata   TierConfig
}

// DefaultConfig retorna la configuración por defecto de las caches
func DefaultConfig() Config {
	return Config{
		Rates:      TierConfig{Capacity: 500, DefaultTTL: time.Hour},
		Historical: TierConfig{Capacity: 200, DefaultTTL: 24 * time.Hour},
		Metadata:   TierConfig{Capacity: 50, DefaultTTL: 24 * time.Hour},
	}
}

// NewStore crea el almacén con las caches rates, historical y metadata
func NewStore(cfg Config, opts ...Option) *Store {
	o := buildOptions(opts)

	tiers := map[entities.CacheName]TierConfig{
		entities.RatesCache:      cfg.Rates,
		entities.HistoricalCache: cfg.Historical,
		entities.MetadataCache:   cfg.Metadata,
	}

	caches := make(map[entities.CacheName]*MemoryCache, len(tiers))
	for name, tier := range tiers {
		caches[name] = NewMemoryCache(name, tier.Capacity, tier.DefaultTTL, opts...)
	}

	return &Store{caches: caches, now: o.now}
}
