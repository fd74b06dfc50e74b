package entities

import (
	"strings"
	"time"
)

// CacheName identifica cada una de las caches nombradas
type CacheName string

const (
	RatesCache      CacheName = "rates"
	HistoricalCache CacheName = "historical"
	MetadataCache   CacheName = "metadata"
)

// CacheNames lista las caches en orden estable (usado por stats y flush)
var CacheNames = []CacheName{RatesCache, HistoricalCache, MetadataCache}

// Dataset es el tipo de dato guardado en una entrada
type Dataset string

const (
	DatasetRates       Dataset = "rates"
	DatasetHistory     Dataset = "history"
	DatasetBulkHistory Dataset = "bulk-history"
	DatasetCurrencies  Dataset = "currencies"
)

// ValueKind es el discriminante de CacheValue
type ValueKind string

const (
	ValueRates      ValueKind = "rates"
	ValueCurrencies ValueKind = "currencies"
	ValueBulk       ValueKind = "bulk"
)

// CacheValue es una unión etiquetada sobre las tres formas de payload que admite la cache
type CacheValue struct {
	kind       ValueKind
	rates      []RateRecord
	currencies []CurrencyInfo
	bulk       map[string][]RateRecord
}

func NewRatesValue(rates []RateRecord) CacheValue {
	return CacheValue{kind: ValueRates, rates: rates}
}

func NewCurrenciesValue(currencies []CurrencyInfo) CacheValue {
	return CacheValue{kind: ValueCurrencies, currencies: currencies}
}

func NewBulkValue(bulk map[string][]RateRecord) CacheValue {
	return CacheValue{kind: ValueBulk, bulk: bulk}
}

// Kind retorna el discriminante
func (v CacheValue) Kind() ValueKind {
	return v.kind
}

func (v CacheValue) Rates() ([]RateRecord, bool) {
	return v.rates, v.kind == ValueRates
}

func (v CacheValue) Currencies() ([]CurrencyInfo, bool) {
	return v.currencies, v.kind == ValueCurrencies
}

func (v CacheValue) Bulk() (map[string][]RateRecord, bool) {
	return v.bulk, v.kind == ValueBulk
}

// IsEmpty indica si el payload no contiene registros
func (v CacheValue) IsEmpty() bool {
	switch v.kind {
	case ValueRates:
		return len(v.rates) == 0
	case ValueCurrencies:
		return len(v.currencies) == 0
	case ValueBulk:
		return len(v.bulk) == 0
	default:
		return true
	}
}

// EntryMeta es la metadata estructurada que acompaña a cada entrada.
// Date es la fecha a la que refiere el dato (para rangos, el fin del rango).
type EntryMeta struct {
	Dataset  Dataset   `json:"dataset"`
	Date     time.Time `json:"date"`
	Start    time.Time `json:"start,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Params   []string  `json:"params,omitempty"`
}

// CacheEntry es una entrada almacenada en una cache nombrada
type CacheEntry struct {
	Key        string
	Value      CacheValue
	Meta       EntryMeta
	InsertedAt time.Time
	TTL        time.Duration
}

// ExpiresAt retorna el instante a partir del cual la entrada deja de ser visible
func (e CacheEntry) ExpiresAt() time.Time {
	return e.InsertedAt.Add(e.TTL)
}

// Visible indica si la entrada sigue vigente en now
func (e CacheEntry) Visible(now time.Time) bool {
	return now.Before(e.ExpiresAt())
}

// CacheStats son los contadores de una cache nombrada
type CacheStats struct {
	HitCount          uint64  `json:"hitCount"`
	MissCount         uint64  `json:"missCount"`
	KeyCount          int     `json:"keyCount"`
	Capacity          int     `json:"capacity"`
	DefaultTTLSeconds float64 `json:"defaultTtlSeconds"`
}

// ParseCacheName valida un nombre recibido desde la API
func ParseCacheName(name string) (CacheName, bool) {
	candidate := CacheName(strings.ToLower(strings.TrimSpace(name)))
	for _, n := range CacheNames {
		if n == candidate {
			return n, true
		}
	}
	return "", false
}
