package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency es la moneda contra la que NBP cotiza todas las tablas
const BaseCurrency = "PLN"

// RateRecord es una cotización de compra/venta de una moneda para una fecha
type RateRecord struct {
	CurrencyCode string          `json:"code"`
	Currency     string          `json:"currency,omitempty"`
	Date         time.Time       `json:"date"`
	Buy          decimal.Decimal `json:"buy"`
	Sell         decimal.Decimal `json:"sell"`
}

// NewRateRecord crea una cotización normalizando el código a mayúsculas
func NewRateRecord(code, name string, date time.Time, buy, sell decimal.Decimal) RateRecord {
	return RateRecord{
		CurrencyCode: normalizeCode(code),
		Currency:     name,
		Date:         date,
		Buy:          buy,
		Sell:         sell,
	}
}

// Mid retorna el promedio de los lados presentes; si falta uno se usa el otro
func (r RateRecord) Mid() decimal.Decimal {
	switch {
	case r.Buy.IsZero() && r.Sell.IsZero():
		return decimal.Zero
	case r.Buy.IsZero():
		return r.Sell
	case r.Sell.IsZero():
		return r.Buy
	default:
		return r.Buy.Add(r.Sell).Div(decimal.NewFromInt(2))
	}
}

// CurrencyInfo describe una moneda disponible en el proveedor
type CurrencyInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DedupeRates conserva una sola cotización canónica por (moneda, fecha); gana la última
func DedupeRates(records []RateRecord) []RateRecord {
	if len(records) < 2 {
		return records
	}

	type recordKey struct {
		code string
		date time.Time
	}

	index := make(map[recordKey]int, len(records))
	out := make([]RateRecord, 0, len(records))
	for _, rec := range records {
		k := recordKey{code: rec.CurrencyCode, date: rec.Date}
		if i, ok := index[k]; ok {
			out[i] = rec
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out
}

// FindRate busca la cotización de una moneda dentro de una tabla
func FindRate(records []RateRecord, code string) (RateRecord, bool) {
	code = normalizeCode(code)
	for _, rec := range records {
		if rec.CurrencyCode == code {
			return rec, true
		}
	}
	return RateRecord{}, false
}
