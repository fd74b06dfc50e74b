package cache

import (
	"testing"
	"time"

	"fx-rates-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500, cfg.Rates.Capacity)
	assert.Equal(t, time.Hour, cfg.Rates.DefaultTTL)
	assert.Equal(t, 200, cfg.Historical.Capacity)
	assert.Equal(t, 24*time.Hour, cfg.Historical.DefaultTTL)
	assert.Equal(t, 50, cfg.Metadata.Capacity)
	assert.Equal(t, 24*time.Hour, cfg.Metadata.DefaultTTL)
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   map[entities.CacheName]int
	}{
		{
			name:   "default tiers",
			config: DefaultConfig(),
			want: map[entities.CacheName]int{
				entities.RatesCache:      500,
				entities.HistoricalCache: 200,
				entities.MetadataCache:   50,
			},
		},
		{
			name: "custom tiers",
			config: Config{
				Rates:      TierConfig{Capacity: 5, DefaultTTL: time.Minute},
				Historical: TierConfig{Capacity: 3, DefaultTTL: time.Minute},
				Metadata:   TierConfig{Capacity: 1, DefaultTTL: time.Minute},
			},
			want: map[entities.CacheName]int{
				entities.RatesCache:      5,
				entities.HistoricalCache: 3,
				entities.MetadataCache:   1,
			},
		},
		{
			name:   "zero capacity uses default",
			config: Config{},
			want: map[entities.CacheName]int{
				entities.RatesCache:      DefaultCapacity,
				entities.HistoricalCache: DefaultCapacity,
				entities.MetadataCache:   DefaultCapacity,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(tt.config)
			require.NotNil(t, store)

			for name, capacity := range tt.want {
				stats, err := store.Stats(name)
				require.NoError(t, err)
				assert.Equal(t, capacity, stats.Capacity, "cache %s", name)
			}
		})
	}
}
