package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source indica de dónde salió una respuesta del resolver
type Source string

const (
	SourceCache       Source = "cache"
	SourceUpstream    Source = "upstream"
	SourceSubstituted Source = "substituted"
	SourceNone        Source = "none"
)

// DateRange es un rango cerrado de fechas [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Equal compara dos rangos por fecha
func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// RatesResult es la tabla de cotizaciones resuelta para una fecha
type RatesResult struct {
	RequestedDate    time.Time
	EffectiveDate    time.Time
	Rates            []RateRecord
	Source           Source
	FromPreviousDate bool
}

// IsEmpty indica que no hubo datos para la fecha ni para los días previos
func (r *RatesResult) IsEmpty() bool {
	return len(r.Rates) == 0
}

// HistoryResult es el histórico de una moneda en un rango
type HistoryResult struct {
	Currency string
	Range    DateRange
	Rates    []RateRecord
	Source   Source
}

// BulkHistoryResult es el histórico de todas las monedas conocidas.
// Actual puede diferir de Requested cuando se sirve el rango cacheado más reciente.
type BulkHistoryResult struct {
	Requested DateRange
	Actual    DateRange
	Rates     map[string][]RateRecord
	Source    Source
}

// Conversion es el resultado de convertir un monto entre dos monedas vía PLN
type Conversion struct {
	From   string
	To     string
	Amount decimal.Decimal
	Result decimal.Decimal
	Rate   decimal.Decimal
	Date   time.Time
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCurrencyCode normaliza y valida un código ISO 4217 de tres letras
func NormalizeCurrencyCode(code string) (string, bool) {
	code = normalizeCode(code)
	if len(code) != 3 {
		return "", false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return code, true
}
