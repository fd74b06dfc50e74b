package interfaces

import (
	"context"
	"time"

	"fx-rates-service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// RatesService define los casos de uso de consulta de cotizaciones con fallback de fechas
type RatesService interface {
	// GetLatestRates retorna la tabla más reciente, retrocediendo hasta 7 días si hace falta
	GetLatestRates(ctx context.Context) (*entities.RatesResult, error)

	// GetRatesForDate retorna la tabla de una fecha explícita.
	// Hoy o futuro: sustituye por el snapshot cacheado más reciente.
	GetRatesForDate(ctx context.Context, date time.Time) (*entities.RatesResult, error)

	// GetCurrencyHistory retorna el histórico de una moneda en [start, end]
	GetCurrencyHistory(ctx context.Context, code string, start, end time.Time) (*entities.HistoryResult, error)

	// GetBulkHistory retorna el histórico de todas las monedas conocidas
	GetBulkHistory(ctx context.Context, start, end time.Time) (*entities.BulkHistoryResult, error)

	GetCurrencies(ctx context.Context) ([]entities.CurrencyInfo, error)

	// Convert convierte un monto usando la tabla de la fecha indicada (o la última si date es nil)
	Convert(ctx context.Context, from, to string, amount decimal.Decimal, date *time.Time) (*entities.Conversion, error)
}

// CacheStore es el almacén de caches nombradas compartido por handlers, resolver y scheduler
type CacheStore interface {
	Get(ctx context.Context, name entities.CacheName, key string) (entities.CacheValue, bool)
	Set(ctx context.Context, name entities.CacheName, key string, value entities.CacheValue, meta entities.EntryMeta, ttl time.Duration) error
	Delete(ctx context.Context, name entities.CacheName, key string) error
	Flush(ctx context.Context, name entities.CacheName) error
	FlushAll(ctx context.Context)
	Keys(name entities.CacheName) []string
	Entries(name entities.CacheName, filter func(entities.EntryMeta) bool) []entities.CacheEntry
	Prune(ctx context.Context, name entities.CacheName) (int, error)
	PruneAll(ctx context.Context) int
	Stats(name entities.CacheName) (entities.CacheStats, error)
	AllStats() map[entities.CacheName]entities.CacheStats
	BuildKey(dataset entities.Dataset, params ...string) string
}
