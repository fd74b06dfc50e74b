package exchange

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/pkg/utils"

	"github.com/shopspring/decimal"
)

// MockProvider implementa interfaces.RatesProvider para testing y development.
// Retorna cotizaciones falsas pero realistas y deterministas: la misma fecha produce
// siempre la misma tabla. Los fines de semana no hay publicación, igual que en NBP.
type MockProvider struct {
	mu         sync.RWMutex
	baseMids   map[string]decimal.Decimal // Promedio base contra PLN
	names      map[string]string
	variance   float64 // Variación máxima diaria (fracción)
	spread     decimal.Decimal
	failures   map[string]error // Errores forzados por moneda (útil en tests)
	calls      int
	callsMutex sync.Mutex
}

var _ interfaces.RatesProvider = (*MockProvider)(nil)

// NewMockProvider crea una nueva instancia del proveedor mock
func NewMockProvider() *MockProvider {
	return &MockProvider{
		baseMids: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("3.9900"),
			"EUR": decimal.RequireFromString("4.3600"),
			"CHF": decimal.RequireFromString("4.6500"),
			"GBP": decimal.RequireFromString("5.0700"),
			"JPY": decimal.RequireFromString("0.0272"),
			"AUD": decimal.RequireFromString("2.6500"),
			"CAD": decimal.RequireFromString("2.9500"),
			"CZK": decimal.RequireFromString("0.1770"),
			"DKK": decimal.RequireFromString("0.5850"),
			"NOK": decimal.RequireFromString("0.3800"),
			"SEK": decimal.RequireFromString("0.3850"),
			"HUF": decimal.RequireFromString("0.0113"),
			"XDR": decimal.RequireFromString("5.3200"),
		},
		names: map[string]string{
			"USD": "dolar amerykański",
			"EUR": "euro",
			"CHF": "frank szwajcarski",
			"GBP": "funt szterling",
			"JPY": "jen (Japonia)",
			"AUD": "dolar australijski",
			"CAD": "dolar kanadyjski",
			"CZK": "korona czeska",
			"DKK": "korona duńska",
			"NOK": "korona norweska",
			"SEK": "korona szwedzka",
			"HUF": "forint (Węgry)",
			"XDR": "SDR (MFW)",
		},
		variance: 0.02, // ±2% variation
		spread:   decimal.RequireFromString("0.01"),
		failures: make(map[string]error),
	}
}

// RatesForDate retorna la tabla falsa de la fecha; vacía en fin de semana
func (m *MockProvider) RatesForDate(ctx context.Context, date time.Time) ([]entities.RateRecord, error) {
	m.countCall()
	day := utils.TruncateToDay(date)

	if utils.IsWeekend(day) {
		logging.Debug(ctx, "MockProvider: no table on weekends", logging.Fields{
			logging.FieldDate: utils.FormatDate(day),
		})
		return []entities.RateRecord{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures["*"]; ok {
		return nil, err
	}

	records := make([]entities.RateRecord, 0, len(m.baseMids))
	for _, code := range m.sortedCodes() {
		records = append(records, m.recordFor(code, day))
	}

	logging.Debug(ctx, "MockProvider: generated rates table", logging.Fields{
		logging.FieldDate:    utils.FormatDate(day),
		logging.FieldRecords: len(records),
	})

	return records, nil
}

// HistoryForCurrency retorna una serie diaria hábil en [start, end]
func (m *MockProvider) HistoryForCurrency(ctx context.Context, code string, start, end time.Time) ([]entities.RateRecord, error) {
	m.countCall()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures[code]; ok {
		return nil, err
	}
	if err, ok := m.failures["*"]; ok {
		return nil, err
	}

	if _, ok := m.baseMids[code]; !ok {
		return []entities.RateRecord{}, nil
	}

	var records []entities.RateRecord
	for day := utils.TruncateToDay(start); !day.After(utils.TruncateToDay(end)); day = utils.AddDays(day, 1) {
		if utils.IsWeekend(day) {
			continue
		}
		records = append(records, m.recordFor(code, day))
	}

	logging.Debug(ctx, "MockProvider: generated history", logging.Fields{
		logging.FieldCurrency:  code,
		logging.FieldStartDate: utils.FormatDate(start),
		logging.FieldEndDate:   utils.FormatDate(end),
		logging.FieldRecords:   len(records),
	})

	if records == nil {
		return []entities.RateRecord{}, nil
	}
	return records, nil
}

// CurrencyList retorna las monedas soportadas por el mock
func (m *MockProvider) CurrencyList(ctx context.Context) ([]entities.CurrencyInfo, error) {
	m.countCall()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures["*"]; ok {
		return nil, err
	}

	out := make([]entities.CurrencyInfo, 0, len(m.baseMids))
	for _, code := range m.sortedCodes() {
		out = append(out, entities.CurrencyInfo{Code: code, Name: m.names[code]})
	}
	return out, nil
}

// recordFor genera la cotización determinista de una moneda para un día.
// Debe llamarse con el lock de lectura tomado.
func (m *MockProvider) recordFor(code string, day time.Time) entities.RateRecord {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code + utils.FormatDate(day)))

	// variación en [-variance, +variance]
	unit := float64(h.Sum32()%2001)/1000.0 - 1.0
	mid := m.baseMids[code].Mul(decimal.NewFromFloat(1 + unit*m.variance)).Round(4)

	half := mid.Mul(m.spread).Div(decimal.NewFromInt(2)).Round(4)
	return entities.NewRateRecord(code, m.names[code], day, mid.Sub(half), mid.Add(half))
}

func (m *MockProvider) sortedCodes() []string {
	codes := make([]string, 0, len(m.baseMids))
	for code := range m.baseMids {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (m *MockProvider) countCall() {
	m.callsMutex.Lock()
	m.calls++
	m.callsMutex.Unlock()
}

// Calls retorna cuántas llamadas recibió el proveedor
func (m *MockProvider) Calls() int {
	m.callsMutex.Lock()
	defer m.callsMutex.Unlock()
	return m.calls
}

// AddCurrency agrega una moneda con su promedio base (útil para testing)
func (m *MockProvider) AddCurrency(code, name string, mid decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseMids[code] = mid
	m.names[code] = name
}

// FailCurrency fuerza un error para una moneda; "*" hace fallar todas las llamadas
func (m *MockProvider) FailCurrency(code string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, code)
		return
	}
	m.failures[code] = err
}

// SetVariance configura la variación porcentual diaria
func (m *MockProvider) SetVariance(variance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variance = variance
}
