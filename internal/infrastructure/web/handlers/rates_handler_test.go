package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRatesHandler_GetLatest(t *testing.T) {
	rates := new(MockRatesService)
	rates.On("GetLatestRates", mock.Anything).Return(&entities.RatesResult{
		RequestedDate:    testDate,
		EffectiveDate:    testDate.AddDate(0, 0, -3),
		Rates:            []entities.RateRecord{usdRate},
		Source:           entities.SourceUpstream,
		FromPreviousDate: true,
	}, nil)

	w := serve(NewRatesHandler(rates).GetLatest, http.MethodGet, "/api/v1/rates/latest", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response dto.RatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "2024-01-15", response.RequestedDate)
	assert.Equal(t, "2024-01-12", response.EffectiveDate)
	assert.True(t, response.FromPreviousDate)
	assert.Equal(t, "upstream", response.Source)
	require.Len(t, response.Rates, 1)
	assert.Equal(t, "USD", response.Rates[0].Code)
	assert.True(t, decimal.RequireFromString("3.95").Equal(response.Rates[0].Buy))
}

func TestRatesHandler_GetByDateEmptyResult(t *testing.T) {
	rates := new(MockRatesService)
	rates.On("GetRatesForDate", mock.Anything, testDate).Return(&entities.RatesResult{
		RequestedDate: testDate,
		Rates:         []entities.RateRecord{},
		Source:        entities.SourceNone,
	}, nil)

	w := serve(NewRatesHandler(rates).GetByDate, http.MethodGet, "/api/v1/rates/2024-01-15",
		map[string]string{"date": "2024-01-15"})

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.RatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "none", response.Source)
	assert.Empty(t, response.Rates)
	assert.Empty(t, response.EffectiveDate)
}

func TestRatesHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"future date", domain.ErrFutureDate, http.StatusBadRequest, CodeFutureDate},
		{"invalid range", domain.ErrInvalidRange, http.StatusBadRequest, CodeInvalidRange},
		{"range too long", fmt.Errorf("%w: 120 days", domain.ErrRangeTooLong), http.StatusBadRequest, CodeRangeTooLong},
		{"invalid currency", domain.ErrInvalidCurrency, http.StatusBadRequest, CodeInvalidCurrency},
		{"no data", domain.ErrNoDataForRange, http.StatusNotFound, CodeNoData},
		{"upstream", fmt.Errorf("%w: timeout", domain.ErrUpstreamUnavailable), http.StatusBadGateway, CodeUpstreamUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := new(MockRatesService)
			rates.On("GetCurrencyHistory", mock.Anything, "USD", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(NewRatesHandler(rates).GetHistory, http.MethodGet,
				"/api/v1/rates/USD/history?start=2024-01-01&end=2024-01-10",
				map[string]string{"code": "USD"})

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantCode, response.Error)
			assert.NotEmpty(t, response.Message)
		})
	}
}

func TestRatesHandler_InvalidParameters(t *testing.T) {
	h := NewRatesHandler(new(MockRatesService))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  string
		vars    map[string]string
	}{
		{"malformed date", h.GetByDate, "/api/v1/rates/2024-13-01", map[string]string{"date": "2024-13-01"}},
		{"history without end", h.GetHistory, "/api/v1/rates/USD/history?start=2024-01-01", map[string]string{"code": "USD"}},
		{"bulk with bad start", h.GetBulkHistory, "/api/v1/history?start=yesterday&end=2024-01-10", nil},
		{"convert negative amount", h.Convert, "/api/v1/convert?from=EUR&to=USD&amount=-1", nil},
		{"convert bad code", h.Convert, "/api/v1/convert?from=EURO&to=USD&amount=1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.handler, http.MethodGet, tt.target, tt.vars)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, CodeInvalidParameter, decodeError(t, w).Error)
		})
	}
}

func TestRatesHandler_GetBulkHistoryReportsActualRange(t *testing.T) {
	requested := entities.DateRange{Start: testDate.AddDate(0, 0, -30), End: testDate}
	actual := entities.DateRange{Start: testDate.AddDate(0, 0, -7), End: testDate}

	rates := new(MockRatesService)
	rates.On("GetBulkHistory", mock.Anything, requested.Start, requested.End).Return(&entities.BulkHistoryResult{
		Requested: requested,
		Actual:    actual,
		Rates:     map[string][]entities.RateRecord{"USD": {usdRate}},
		Source:    entities.SourceCache,
	}, nil)

	w := serve(NewRatesHandler(rates).GetBulkHistory, http.MethodGet, "/api/v1/history?start=2023-12-16&end=2024-01-15", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.BulkHistoryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "2023-12-16", response.RequestedRange.Start)
	assert.Equal(t, "2024-01-08", response.ActualRange.Start)
	assert.Equal(t, 1, response.Currencies)
	assert.Len(t, response.Rates["USD"], 1)
}

func TestRatesHandler_Convert(t *testing.T) {
	amount := decimal.NewFromInt(100)

	rates := new(MockRatesService)
	rates.On("Convert", mock.Anything, "EUR", "USD", mock.MatchedBy(amount.Equal), mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(testDate)
	})).Return(&entities.Conversion{
		From:   "EUR",
		To:     "USD",
		Amount: amount,
		Result: decimal.RequireFromString("108.75"),
		Rate:   decimal.RequireFromString("1.0875"),
		Date:   testDate,
	}, nil)

	w := serve(NewRatesHandler(rates).Convert, http.MethodGet, "/api/v1/convert?from=eur&to=usd&amount=100&date=2024-01-15", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ConversionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, decimal.RequireFromString("108.75").Equal(response.Result))
	assert.Equal(t, "2024-01-15", response.Date)
	rates.AssertExpectations(t)
}

func TestRatesHandler_GetCurrenciesSorted(t *testing.T) {
	rates := new(MockRatesService)
	rates.On("GetCurrencies", mock.Anything).Return([]entities.CurrencyInfo{
		{Code: "USD", Name: "dolar amerykański"},
		{Code: "EUR", Name: "euro"},
	}, nil)

	w := serve(NewRatesHandler(rates).GetCurrencies, http.MethodGet, "/api/v1/currencies", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.CurrenciesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "EUR", response.Currencies[0].Code)
}
