package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/pkg/utils"
)

// Store es el almacén de las tres caches nombradas.
// Se construye una sola vez al arrancar y se inyecta en handlers, resolver y scheduler.
type Store struct {
	caches map[entities.CacheName]*MemoryCache
	now    func() time.Time
}

var _ interfaces.CacheStore = (*Store)(nil)

func (s *Store) cache(name entities.CacheName) (*MemoryCache, error) {
	c, ok := s.caches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCache, name)
	}
	return c, nil
}

// BuildKey arma la clave dataset_<fecha de hoy>_<params...>.
// La fecha embebida es la de construcción, así las claves rotan a diario.
func (s *Store) BuildKey(dataset entities.Dataset, params ...string) string {
	key := string(dataset) + "_" + utils.FormatDate(s.now())
	if len(params) > 0 {
		key += "_" + strings.Join(params, "_")
	}
	return key
}

func (s *Store) Get(ctx context.Context, name entities.CacheName, key string) (entities.CacheValue, bool) {
	c, err := s.cache(name)
	if err != nil {
		logging.Cache().CacheError(ctx, logging.CacheOpGet, string(name), err)
		return entities.CacheValue{}, false
	}
	return c.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, name entities.CacheName, key string, value entities.CacheValue, meta entities.EntryMeta, ttl time.Duration) error {
	c, err := s.cache(name)
	if err != nil {
		return err
	}
	c.Set(ctx, key, value, meta, ttl)
	return nil
}

func (s *Store) Delete(ctx context.Context, name entities.CacheName, key string) error {
	c, err := s.cache(name)
	if err != nil {
		return err
	}
	c.Delete(ctx, key)
	return nil
}

func (s *Store) Flush(ctx context.Context, name entities.CacheName) error {
	c, err := s.cache(name)
	if err != nil {
		return err
	}
	c.Flush(ctx)
	return nil
}

// FlushAll vacía las tres caches
func (s *Store) FlushAll(ctx context.Context) {
	for _, name := range entities.CacheNames {
		s.caches[name].Flush(ctx)
	}
}

func (s *Store) Keys(name entities.CacheName) []string {
	c, err := s.cache(name)
	if err != nil {
		return nil
	}
	return c.Keys()
}

func (s *Store) Entries(name entities.CacheName, filter func(entities.EntryMeta) bool) []entities.CacheEntry {
	c, err := s.cache(name)
	if err != nil {
		return nil
	}
	return c.Entries(filter)
}

func (s *Store) Prune(ctx context.Context, name entities.CacheName) (int, error) {
	c, err := s.cache(name)
	if err != nil {
		return 0, err
	}
	return c.Prune(ctx), nil
}

// PruneAll purga lo expirado en todas las caches y retorna el total eliminado
func (s *Store) PruneAll(ctx context.Context) int {
	total := 0
	for _, name := range entities.CacheNames {
		total += s.caches[name].Prune(ctx)
	}
	return total
}

func (s *Store) Stats(name entities.CacheName) (entities.CacheStats, error) {
	c, err := s.cache(name)
	if err != nil {
		return entities.CacheStats{}, err
	}
	return c.Stats(), nil
}

func (s *Store) AllStats() map[entities.CacheName]entities.CacheStats {
	out := make(map[entities.CacheName]entities.CacheStats, len(s.caches))
	for name, c := range s.caches {
		out[name] = c.Stats()
	}
	return out
}

// RunJanitor purga periódicamente las entradas expiradas hasta que ctx se cancele
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info(ctx, "Cache janitor started", logging.Fields{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			logging.Info(context.Background(), "Cache janitor stopped", nil)
			return
		case <-ticker.C:
			removed := s.PruneAll(ctx)
			logging.Info(ctx, "Expired cache entries pruned", logging.Fields{
				logging.FieldCacheCount: removed,
			})
		}
	}
}
