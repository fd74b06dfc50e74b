package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/application/services"
	"fx-rates-service/internal/infrastructure/exchange"
	"fx-rates-service/internal/infrastructure/repositories/cache"
	"fx-rates-service/internal/infrastructure/web/handlers"
	"fx-rates-service/internal/infrastructure/web/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lunes
var today = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Today(ctx context.Context) time.Time { return today }

func newTestRouter(t *testing.T) (*mux.Router, *exchange.MockProvider) {
	t.Helper()

	provider := exchange.NewMockProvider()
	store := cache.NewStore(cache.DefaultConfig())
	rates := services.NewRatesService(provider, store, fixedClock{}, services.DefaultRatesConfig())
	warming := services.NewWarmingService(provider, store, fixedClock{}, services.DefaultWarmingConfig())

	router := NewRouter(Handlers{
		Rates:   handlers.NewRatesHandler(rates),
		Cache:   handlers.NewCacheHandler(store),
		Warming: handlers.NewWarmingHandler(warming),
		Health:  handlers.NewHealthHandler(store, warming),
	}, nil)

	return router, provider
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Integration(t *testing.T) {
	router, provider := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		w := do(router, http.MethodGet, "/health")

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("latest is not captured by the date route", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/rates/latest")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.RatesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "2024-01-15", response.EffectiveDate)
	})

	t.Run("weekend date falls back to friday", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/rates/2024-01-13")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.RatesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "2024-01-13", response.RequestedDate)
		assert.Equal(t, "2024-01-12", response.EffectiveDate)
		assert.True(t, response.FromPreviousDate)
		assert.Equal(t, "upstream", response.Source)
		assert.Len(t, response.Rates, 13)
	})

	t.Run("repeated date is served from cache", func(t *testing.T) {
		before := provider.Calls()

		w := do(router, http.MethodGet, "/api/v1/rates/2024-01-13")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, provider.Calls())
	})

	t.Run("currency history", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/rates/usd/history?start=2024-01-08&end=2024-01-14")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.HistoryResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "USD", response.Currency)
		assert.Len(t, response.Rates, 5)
	})

	t.Run("convert through PLN", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/convert?from=PLN&to=EUR&amount=0")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.ConversionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Result.IsZero())
	})

	t.Run("stats reflect traffic", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/cache/stats")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.CacheStatsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Positive(t, response["rates"].KeyCount)
		assert.Positive(t, response["rates"].HitCount)
		assert.Equal(t, 1, response["historical"].KeyCount)
	})

	t.Run("unknown cache", func(t *testing.T) {
		w := do(router, http.MethodDelete, "/api/v1/cache/sessions")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("clear is not captured by the name route", func(t *testing.T) {
		w := do(router, http.MethodDelete, "/api/v1/cache/clear")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.MessageResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "All caches cleared", response.Message)
	})

	t.Run("run one warming job", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/cache-warming/run/currency-list")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.WarmingJobData
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "completed", response.Status)
		assert.Equal(t, 1, response.RunCount)
	})

	t.Run("ready after a completed job", func(t *testing.T) {
		w := do(router, http.MethodGet, "/ready")

		require.Equal(t, http.StatusOK, w.Code)

		var response dto.ReadyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "ready", response.Status)
	})

	t.Run("unknown warming job", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/cache-warming/status/nightly")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/cache-warming/run-all")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := do(router, http.MethodGet, "/metrics")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fx_rates_http_requests_total")
	})
}

func TestRouter_FutureDateWithEmptyCache(t *testing.T) {
	router, provider := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/rates/2024-02-01")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, handlers.CodeFutureDate, response.Error)
	assert.Zero(t, provider.Calls())
}

func TestRouter_RequestIDPropagation(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-trace-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "client-trace-42", w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_RateLimitHook(t *testing.T) {
	provider := exchange.NewMockProvider()
	store := cache.NewStore(cache.DefaultConfig())
	warming := services.NewWarmingService(provider, store, fixedClock{}, services.DefaultWarmingConfig())

	blocked := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	router := NewRouter(Handlers{
		Rates:   handlers.NewRatesHandler(services.NewRatesService(provider, store, fixedClock{}, services.DefaultRatesConfig())),
		Cache:   handlers.NewCacheHandler(store),
		Warming: handlers.NewWarmingHandler(warming),
		Health:  handlers.NewHealthHandler(store, warming),
	}, blocked)

	w := do(router, http.MethodGet, "/api/v1/currencies")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Zero(t, provider.Calls())
}
