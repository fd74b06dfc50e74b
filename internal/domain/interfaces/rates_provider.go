package interfaces

import (
	"context"
	"time"

	"fx-rates-service/internal/domain/entities"
)

// RatesProvider es el cliente del proveedor upstream de cotizaciones.
// Una lista vacía con error nil es un resultado válido (día sin publicación).
type RatesProvider interface {
	RatesForDate(ctx context.Context, date time.Time) ([]entities.RateRecord, error)
	HistoryForCurrency(ctx context.Context, code string, start, end time.Time) ([]entities.RateRecord, error)
	CurrencyList(ctx context.Context) ([]entities.CurrencyInfo, error)
}

// TimeSource determina el "hoy" efectivo según el proveedor
type TimeSource interface {
	Today(ctx context.Context) time.Time
}
