package nbp

import (
	"fmt"
	"strings"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/pkg/utils"

	"github.com/shopspring/decimal"
)

// TableResponse es un elemento del arreglo devuelto por /exchangerates/tables/{table}
type TableResponse struct {
	Table         string      `json:"table"`
	No            string      `json:"no"`
	TradingDate   string      `json:"tradingDate"`
	EffectiveDate string      `json:"effectiveDate"`
	Rates         []TableRate `json:"rates"`
}

// TableRate es una cotización dentro de una tabla
type TableRate struct {
	Currency string          `json:"currency"`
	Code     string          `json:"code"`
	Bid      decimal.Decimal `json:"bid"`
	Ask      decimal.Decimal `json:"ask"`
	Mid      decimal.Decimal `json:"mid"` // solo tablas A y B
}

// SeriesResponse es la respuesta de /exchangerates/rates/{table}/{code}/{start}/{end}
type SeriesResponse struct {
	Table    string       `json:"table"`
	Currency string       `json:"currency"`
	Code     string       `json:"code"`
	Rates    []SeriesRate `json:"rates"`
}

// SeriesRate es una cotización diaria de una serie
type SeriesRate struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Bid           decimal.Decimal `json:"bid"`
	Ask           decimal.Decimal `json:"ask"`
	Mid           decimal.Decimal `json:"mid"`
}

// sides retorna compra/venta; las tablas A y B solo publican el promedio
func sides(bid, ask, mid decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if bid.IsZero() && ask.IsZero() {
		return mid, mid
	}
	return bid, ask
}

// ToRecords convierte las tablas a cotizaciones de dominio deduplicadas por (moneda, fecha)
func ToRecords(tables []TableResponse) ([]entities.RateRecord, error) {
	var out []entities.RateRecord
	for _, table := range tables {
		date, err := utils.ParseDate(table.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: %w", ErrInvalidPayload, table.No, err)
		}

		for _, r := range table.Rates {
			if strings.TrimSpace(r.Code) == "" {
				continue
			}
			buy, sell := sides(r.Bid, r.Ask, r.Mid)
			out = append(out, entities.NewRateRecord(r.Code, r.Currency, date, buy, sell))
		}
	}
	return entities.DedupeRates(out), nil
}

// ToRecords convierte una serie a cotizaciones de dominio
func (s SeriesResponse) ToRecords() ([]entities.RateRecord, error) {
	out := make([]entities.RateRecord, 0, len(s.Rates))
	for _, r := range s.Rates {
		date, err := utils.ParseDate(r.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("%w: series %s: %w", ErrInvalidPayload, s.Code, err)
		}
		buy, sell := sides(r.Bid, r.Ask, r.Mid)
		out = append(out, entities.NewRateRecord(s.Code, s.Currency, date, buy, sell))
	}
	return entities.DedupeRates(out), nil
}

// ToCurrencies extrae la lista de monedas de la tabla más reciente
func ToCurrencies(tables []TableResponse) []entities.CurrencyInfo {
	seen := make(map[string]bool)
	var out []entities.CurrencyInfo
	for _, table := range tables {
		for _, r := range table.Rates {
			code, ok := entities.NormalizeCurrencyCode(r.Code)
			if !ok || seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, entities.CurrencyInfo{Code: code, Name: r.Currency})
		}
	}
	return out
}
