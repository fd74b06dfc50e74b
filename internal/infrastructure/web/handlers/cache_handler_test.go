package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/infrastructure/repositories/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *cache.Store {
	t.Helper()
	ctx := context.Background()
	store := cache.NewStore(cache.DefaultConfig())

	meta := entities.EntryMeta{Dataset: entities.DatasetRates, Date: testDate}
	require.NoError(t, store.Set(ctx, entities.RatesCache, store.BuildKey(entities.DatasetRates, "2024-01-15"),
		entities.NewRatesValue([]entities.RateRecord{usdRate}), meta, 0))
	require.NoError(t, store.Set(ctx, entities.MetadataCache, store.BuildKey(entities.DatasetCurrencies),
		entities.NewCurrenciesValue([]entities.CurrencyInfo{{Code: "USD"}}), entities.EntryMeta{Dataset: entities.DatasetCurrencies}, time.Hour))

	// Un hit y un miss en rates
	store.Get(ctx, entities.RatesCache, store.BuildKey(entities.DatasetRates, "2024-01-15"))
	store.Get(ctx, entities.RatesCache, store.BuildKey(entities.DatasetRates, "2024-01-14"))
	return store
}

func TestCacheHandler_Stats(t *testing.T) {
	w := serve(NewCacheHandler(seededStore(t)).Stats, http.MethodGet, "/api/v1/cache/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.CacheStatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Contains(t, response, "rates")
	require.Contains(t, response, "historical")
	require.Contains(t, response, "metadata")

	assert.Equal(t, uint64(1), response["rates"].HitCount)
	assert.Equal(t, uint64(1), response["rates"].MissCount)
	assert.Equal(t, 1, response["rates"].KeyCount)
	assert.Equal(t, 500, response["rates"].Capacity)
	assert.Equal(t, float64(3600), response["rates"].DefaultTTLSeconds)
	assert.Equal(t, 1, response["metadata"].KeyCount)
	assert.Equal(t, 0, response["historical"].KeyCount)
}

func TestCacheHandler_ClearAll(t *testing.T) {
	store := seededStore(t)

	w := serve(NewCacheHandler(store).ClearAll, http.MethodDelete, "/api/v1/cache/clear", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.MessageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "All caches cleared", response.Message)
	for _, name := range entities.CacheNames {
		assert.Empty(t, store.Keys(name), "cache %s should be empty", name)
	}
}

func TestCacheHandler_ClearOne(t *testing.T) {
	t.Run("known cache", func(t *testing.T) {
		store := seededStore(t)

		w := serve(NewCacheHandler(store).ClearOne, http.MethodDelete, "/api/v1/cache/rates",
			map[string]string{"name": "rates"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, store.Keys(entities.RatesCache))
		assert.Len(t, store.Keys(entities.MetadataCache), 1)
	})

	t.Run("unknown cache", func(t *testing.T) {
		w := serve(NewCacheHandler(seededStore(t)).ClearOne, http.MethodDelete, "/api/v1/cache/sessions",
			map[string]string{"name": "sessions"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeUnknownCache, decodeError(t, w).Error)
	})
}

func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler(seededStore(t), new(MockWarmingService))

	w := serve(h.Health, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
}

func TestHealthHandler_Ready(t *testing.T) {
	completed := pendingJobs()
	completed[1].Status = entities.JobCompleted

	tests := []struct {
		name        string
		jobs        []entities.WarmingJob
		inFlight    bool
		wantStatus  string
		wantWarming string
	}{
		{"not warmed yet", pendingJobs(), false, "degraded", "not warmed yet"},
		{"first sweep running", pendingJobs(), true, "degraded", "in progress"},
		{"one job completed", completed, false, "ready", "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warming := new(MockWarmingService)
			warming.On("Status").Return(tt.jobs)
			warming.On("InFlight").Return(tt.inFlight)

			w := serve(NewHealthHandler(seededStore(t), warming).Ready, http.MethodGet, "/ready", nil)

			require.Equal(t, http.StatusOK, w.Code)

			var response dto.ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, tt.wantWarming, response.Services["warming"])
			assert.Len(t, response.Caches, 3)
			assert.Len(t, response.Warming, 3)
		})
	}
}
