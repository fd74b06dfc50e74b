package services

import (
	"context"
	"sync"
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/infrastructure/repositories/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProvider es un mock de interfaces.RatesProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) RatesForDate(ctx context.Context, date time.Time) ([]entities.RateRecord, error) {
	args := m.Called(ctx, date)
	records, _ := args.Get(0).([]entities.RateRecord)
	return records, args.Error(1)
}

func (m *MockProvider) HistoryForCurrency(ctx context.Context, code string, start, end time.Time) ([]entities.RateRecord, error) {
	args := m.Called(ctx, code, start, end)
	records, _ := args.Get(0).([]entities.RateRecord)
	return records, args.Error(1)
}

func (m *MockProvider) CurrencyList(ctx context.Context) ([]entities.CurrencyInfo, error) {
	args := m.Called(ctx)
	currencies, _ := args.Get(0).([]entities.CurrencyInfo)
	return currencies, args.Error(1)
}

// fixedClock es un TimeSource con fecha fija
type fixedClock struct {
	mu    sync.Mutex
	today time.Time
}

func (c *fixedClock) Today(ctx context.Context) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// storeClock es el reloj de pared de la cache, avanzable en tests
type storeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *storeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *storeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var (
	testToday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) // lunes
	friday    = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	provider *MockProvider
	store    *cache.Store
	clock    *fixedClock
	wall     *storeClock
}

func newFixture() *fixture {
	wall := &storeClock{now: testToday.Add(10 * time.Hour)}
	return &fixture{
		provider: &MockProvider{},
		store:    cache.NewStore(cache.DefaultConfig(), cache.WithClock(wall.Now)),
		clock:    &fixedClock{today: testToday},
		wall:     wall,
	}
}

func (f *fixture) ratesService() *RatesService {
	return NewRatesService(f.provider, f.store, f.clock, DefaultRatesConfig())
}

func table(date time.Time) []entities.RateRecord {
	return []entities.RateRecord{
		entities.NewRateRecord("USD", "dolar amerykański", date, decimal.RequireFromString("3.95"), decimal.RequireFromString("4.05")),
		entities.NewRateRecord("EUR", "euro", date, decimal.RequireFromString("4.30"), decimal.RequireFromString("4.40")),
	}
}

func series(code string, start time.Time, days int) []entities.RateRecord {
	out := make([]entities.RateRecord, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, entities.NewRateRecord(code, code, start.AddDate(0, 0, i), decimal.NewFromInt(4), decimal.NewFromInt(5)))
	}
	return out
}
