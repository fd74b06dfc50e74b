package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BuildKey(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(DefaultConfig(), WithClock(clock.Now))

	tests := []struct {
		name    string
		dataset entities.Dataset
		params  []string
		want    string
	}{
		{name: "no params", dataset: entities.DatasetCurrencies, want: "currencies_2024-01-15"},
		{name: "single param", dataset: entities.DatasetRates, params: []string{"2024-01-10"}, want: "rates_2024-01-15_2024-01-10"},
		{
			name:    "several params",
			dataset: entities.DatasetHistory,
			params:  []string{"USD", "2024-01-01", "2024-01-10"},
			want:    "history_2024-01-15_USD_2024-01-01_2024-01-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.BuildKey(tt.dataset, tt.params...))
			assert.Equal(t, store.BuildKey(tt.dataset, tt.params...), store.BuildKey(tt.dataset, tt.params...))
		})
	}

	t.Run("key rotates with the calendar date", func(t *testing.T) {
		before := store.BuildKey(entities.DatasetCurrencies)
		clock.Advance(24 * time.Hour)
		assert.NotEqual(t, before, store.BuildKey(entities.DatasetCurrencies))
	})
}

func TestStore_UnknownCache(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	unknown := entities.CacheName("prices")

	err := store.Set(ctx, unknown, "k", sampleRates("USD"), entities.EntryMeta{}, 0)
	assert.True(t, errors.Is(err, domain.ErrUnknownCache))

	assert.ErrorIs(t, store.Flush(ctx, unknown), domain.ErrUnknownCache)
	assert.ErrorIs(t, store.Delete(ctx, unknown, "k"), domain.ErrUnknownCache)

	_, err = store.Stats(unknown)
	assert.ErrorIs(t, err, domain.ErrUnknownCache)

	_, err = store.Prune(ctx, unknown)
	assert.ErrorIs(t, err, domain.ErrUnknownCache)

	_, ok := store.Get(ctx, unknown, "k")
	assert.False(t, ok)
	assert.Nil(t, store.Keys(unknown))
}

func TestStore_CachesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())

	require.NoError(t, store.Set(ctx, entities.RatesCache, "shared", sampleRates("USD"), entities.EntryMeta{}, 0))

	_, ok := store.Get(ctx, entities.HistoricalCache, "shared")
	assert.False(t, ok)
	_, ok = store.Get(ctx, entities.RatesCache, "shared")
	assert.True(t, ok)

	require.NoError(t, store.Flush(ctx, entities.HistoricalCache))
	assert.Equal(t, []string{"shared"}, store.Keys(entities.RatesCache))
}

func TestStore_FlushAllAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())

	for _, name := range entities.CacheNames {
		require.NoError(t, store.Set(ctx, name, "k", sampleRates("USD"), entities.EntryMeta{}, 0))
		_, _ = store.Get(ctx, name, "k")
	}

	all := store.AllStats()
	require.Len(t, all, 3)
	assert.Equal(t, 500, all[entities.RatesCache].Capacity)
	assert.Equal(t, float64(3600), all[entities.RatesCache].DefaultTTLSeconds)
	assert.Equal(t, 200, all[entities.HistoricalCache].Capacity)
	assert.Equal(t, 50, all[entities.MetadataCache].Capacity)

	store.FlushAll(ctx)

	for _, name := range entities.CacheNames {
		stats, err := store.Stats(name)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.KeyCount)
		assert.Equal(t, uint64(1), stats.HitCount)
	}
}

func TestStore_PruneAll(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(DefaultConfig(), WithClock(clock.Now))

	require.NoError(t, store.Set(ctx, entities.RatesCache, "a", sampleRates("USD"), entities.EntryMeta{}, time.Second))
	require.NoError(t, store.Set(ctx, entities.MetadataCache, "b", sampleRates("USD"), entities.EntryMeta{}, time.Second))
	require.NoError(t, store.Set(ctx, entities.HistoricalCache, "c", sampleRates("USD"), entities.EntryMeta{}, 0))
	clock.Advance(2 * time.Second)

	assert.Equal(t, 2, store.PruneAll(ctx))
	assert.Equal(t, []string{"c"}, store.Keys(entities.HistoricalCache))
}

func TestStore_RunJanitorStopsOnCancel(t *testing.T) {
	store := NewStore(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
