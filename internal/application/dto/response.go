package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateData represents a single buy/sell quote against PLN
// @Description Buy/sell quote of a currency against PLN for a given date
type RateData struct {
	Code     string          `json:"code" example:"USD"`                             // ISO 4217 currency code
	Currency string          `json:"currency,omitempty" example:"dolar amerykański"` // Currency name as published by NBP
	Date     string          `json:"date" example:"2024-01-15"`                      // Publication date
	Buy      decimal.Decimal `json:"buy" swaggertype:"string" example:"3.9501"`      // Bid price in PLN
	Sell     decimal.Decimal `json:"sell" swaggertype:"string" example:"4.0299"`     // Ask price in PLN
}

// RatesResponse represents the response of /api/v1/rates/latest and /api/v1/rates/{date}
// @Description Rates table resolved for a date, possibly from a previous publication day
type RatesResponse struct {
	RequestedDate    string     `json:"requestedDate" example:"2024-01-14"`
	EffectiveDate    string     `json:"effectiveDate,omitempty" example:"2024-01-12"`
	FromPreviousDate bool       `json:"fromPreviousDate"`
	Source           string     `json:"source" example:"cache" enums:"cache,upstream,substituted,none"`
	Rates            []RateData `json:"rates"`
}

// DateRangeData is a closed date range
type DateRangeData struct {
	Start string `json:"start" example:"2024-01-01"`
	End   string `json:"end" example:"2024-01-31"`
}

// HistoryResponse represents the response of /api/v1/rates/{code}/history
// @Description Historical quotes of one currency in a date range
type HistoryResponse struct {
	Currency string        `json:"currency" example:"USD"`
	Range    DateRangeData `json:"range"`
	Source   string        `json:"source" example:"upstream"`
	Rates    []RateData    `json:"rates"`
}

// BulkHistoryResponse represents the response of /api/v1/history
// @Description Historical quotes of every known currency; actualRange may differ from requestedRange
type BulkHistoryResponse struct {
	RequestedRange DateRangeData         `json:"requestedRange"`
	ActualRange    DateRangeData         `json:"actualRange"`
	Source         string                `json:"source" example:"cache"`
	Currencies     int                   `json:"currencies" example:"12"`
	Rates          map[string][]RateData `json:"rates"`
}

// CurrencyData describes an available currency
type CurrencyData struct {
	Code string `json:"code" example:"EUR"`
	Name string `json:"name" example:"euro"`
}

// CurrenciesResponse represents the response of /api/v1/currencies
type CurrenciesResponse struct {
	Currencies []CurrencyData `json:"currencies"`
	Count      int            `json:"count" example:"13"`
}

// ConversionResponse represents the response of /api/v1/convert
// @Description Amount converted through PLN mid rates
type ConversionResponse struct {
	From   string          `json:"from" example:"EUR"`
	To     string          `json:"to" example:"USD"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
	Result decimal.Decimal `json:"result" swaggertype:"string" example:"108.75"`
	Rate   decimal.Decimal `json:"rate" swaggertype:"string" example:"1.0875"`
	Date   string          `json:"date" example:"2024-01-15"`
}

// CacheStatsData holds the counters of one named cache
type CacheStatsData struct {
	HitCount          uint64  `json:"hitCount" example:"120"`
	MissCount         uint64  `json:"missCount" example:"8"`
	KeyCount          int     `json:"keyCount" example:"14"`
	Capacity          int     `json:"capacity" example:"500"`
	DefaultTTLSeconds float64 `json:"defaultTtlSeconds" example:"3600"`
}

// CacheStatsResponse maps cache name to its counters
// @Description Counters per named cache (rates, historical, metadata)
type CacheStatsResponse map[string]CacheStatsData

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message" example:"All caches cleared"`
}

// WarmingJobData represents the observable state of a warming job
// @Description State of a cache warming job
type WarmingJobData struct {
	ID         string     `json:"id" example:"current-rates"`
	Status     string     `json:"status" example:"completed" enums:"pending,running,completed,failed"`
	LastRunAt  *time.Time `json:"lastRunAt"`
	NextRunAt  *time.Time `json:"nextRunAt"`
	LastError  *string    `json:"lastError"`
	RunCount   int        `json:"runCount" example:"3"`
	DurationMs float64    `json:"durationMs,omitempty" example:"182.4"`
}

// WarmingStatusResponse represents the response of /api/v1/cache-warming/status
type WarmingStatusResponse struct {
	Jobs      []WarmingJobData `json:"jobs"`
	InFlight  bool             `json:"inFlight"`
	Timestamp time.Time        `json:"timestamp"`
}

// RunAllResponse represents the response of /api/v1/cache-warming/run-all
type RunAllResponse struct {
	Started   bool             `json:"started"`
	Message   string           `json:"message" example:"Cache warming completed"`
	Jobs      []WarmingJobData `json:"jobs"`
	Timestamp time.Time        `json:"timestamp"`
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error" example:"INVALID_PARAMETER"`                       // Error code
	Message string `json:"message,omitempty" example:"invalid date \"2024-13-01\""` // Detailed error description
}

// ErrorWithJobResponse is returned when a manual job run fails
type ErrorWithJobResponse struct {
	ErrorResponse
	Job WarmingJobData `json:"job"`
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" enums:"healthy,ready,degraded,unhealthy"`
	Timestamp time.Time         `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Services  map[string]string `json:"services,omitempty"`
}

// ReadyResponse extends the health response with cache and scheduler state
type ReadyResponse struct {
	HealthResponse
	Caches  CacheStatsResponse `json:"caches"`
	Warming []WarmingJobData   `json:"warming"`
}
