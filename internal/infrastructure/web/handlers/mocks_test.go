package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain/entities"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRatesService es un mock de interfaces.RatesService
type MockRatesService struct {
	mock.Mock
}

func (m *MockRatesService) GetLatestRates(ctx context.Context) (*entities.RatesResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*entities.RatesResult)
	return result, args.Error(1)
}

func (m *MockRatesService) GetRatesForDate(ctx context.Context, date time.Time) (*entities.RatesResult, error) {
	args := m.Called(ctx, date)
	result, _ := args.Get(0).(*entities.RatesResult)
	return result, args.Error(1)
}

func (m *MockRatesService) GetCurrencyHistory(ctx context.Context, code string, start, end time.Time) (*entities.HistoryResult, error) {
	args := m.Called(ctx, code, start, end)
	result, _ := args.Get(0).(*entities.HistoryResult)
	return result, args.Error(1)
}

func (m *MockRatesService) GetBulkHistory(ctx context.Context, start, end time.Time) (*entities.BulkHistoryResult, error) {
	args := m.Called(ctx, start, end)
	result, _ := args.Get(0).(*entities.BulkHistoryResult)
	return result, args.Error(1)
}

func (m *MockRatesService) GetCurrencies(ctx context.Context) ([]entities.CurrencyInfo, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]entities.CurrencyInfo)
	return result, args.Error(1)
}

func (m *MockRatesService) Convert(ctx context.Context, from, to string, amount decimal.Decimal, date *time.Time) (*entities.Conversion, error) {
	args := m.Called(ctx, from, to, amount, date)
	result, _ := args.Get(0).(*entities.Conversion)
	return result, args.Error(1)
}

// MockWarmingService es un mock de interfaces.WarmingService
type MockWarmingService struct {
	mock.Mock
}

func (m *MockWarmingService) Start(ctx context.Context) { m.Called(ctx) }

func (m *MockWarmingService) Stop() { m.Called() }

func (m *MockWarmingService) RunAll(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockWarmingService) RunJob(ctx context.Context, jobID string) (entities.WarmingJob, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(entities.WarmingJob), args.Error(1)
}

func (m *MockWarmingService) Status() []entities.WarmingJob {
	return m.Called().Get(0).([]entities.WarmingJob)
}

func (m *MockWarmingService) JobStatus(jobID string) (entities.WarmingJob, bool) {
	args := m.Called(jobID)
	return args.Get(0).(entities.WarmingJob), args.Bool(1)
}

func (m *MockWarmingService) InFlight() bool {
	return m.Called().Bool(0)
}

var (
	testDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	usdRate  = entities.NewRateRecord("USD", "dolar amerykański", testDate,
		decimal.RequireFromString("3.95"), decimal.RequireFromString("4.05"))
)

// serve ejecuta el handler con las variables de ruta indicadas
func serve(handler http.HandlerFunc, method, target string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var response dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func pendingJobs() []entities.WarmingJob {
	jobs := make([]entities.WarmingJob, 0, len(entities.JobKinds))
	for _, kind := range entities.JobKinds {
		jobs = append(jobs, entities.NewWarmingJob(kind, testDate).Snapshot())
	}
	return jobs
}
