package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
)

// Valores usados cuando una cache se construye sin capacidad o TTL válidos
const (
	DefaultCapacity = 1000
	DefaultTTL      = time.Hour
)

// MemoryCache es una cache nombrada en memoria con TTL por entrada y capacidad acotada.
// Al superar la capacidad se descarta primero lo expirado y luego la entrada insertada
// hace más tiempo. Sobrescribir una clave cuenta como una inserción nueva.
type MemoryCache struct {
	name       entities.CacheName
	capacity   int
	defaultTTL time.Duration

	mu     sync.Mutex
	items  map[string]*list.Element // valores *entities.CacheEntry
	order  *list.List               // frente = inserción más antigua
	hits   uint64
	misses uint64

	now func() time.Time
}

// Option configura una MemoryCache o un Store
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock inyecta el reloj (usado en tests para controlar TTLs)
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMemoryCache crea una cache nombrada
func NewMemoryCache(name entities.CacheName, capacity int, defaultTTL time.Duration, opts ...Option) *MemoryCache {
	o := buildOptions(opts)
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	return &MemoryCache{
		name:       name,
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        o.now,
	}
}

// Name retorna el nombre de la cache
func (c *MemoryCache) Name() entities.CacheName {
	return c.name
}

// Get retorna el valor si existe y no expiró
func (c *MemoryCache) Get(ctx context.Context, key string) (entities.CacheValue, bool) {
	c.mu.Lock()
	entry, ok := c.lookup(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	name := string(c.name)
	if !ok {
		metrics.RecordCacheOperation(name, "get", "miss")
		logging.CacheOperation(ctx, name, key, false)
		return entities.CacheValue{}, false
	}

	metrics.RecordCacheOperation(name, "get", "hit")
	logging.CacheOperation(ctx, name, key, true)
	return entry.Value, true
}

// lookup debe llamarse con el lock tomado; no devuelve entradas expiradas
func (c *MemoryCache) lookup(key string) (*entities.CacheEntry, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*entities.CacheEntry)
	if !entry.Visible(c.now()) {
		return nil, false
	}
	return entry, true
}

// Set guarda el valor; ttl <= 0 usa el TTL por defecto de la cache
func (c *MemoryCache) Set(ctx context.Context, key string, value entities.CacheValue, meta entities.EntryMeta, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	if elem, exists := c.items[key]; exists {
		c.order.Remove(elem)
		delete(c.items, key)
	}

	evicted := c.makeRoom()

	entry := &entities.CacheEntry{
		Key:        key,
		Value:      value,
		Meta:       meta,
		InsertedAt: c.now(),
		TTL:        ttl,
	}
	c.items[key] = c.order.PushBack(entry)
	size := c.order.Len()
	c.mu.Unlock()

	name := string(c.name)
	for _, k := range evicted {
		metrics.RecordCacheOperation(name, "evict", "success")
		logging.Cache().Evicted(ctx, name, k)
	}
	metrics.RecordCacheOperation(name, "set", "success")
	metrics.UpdateCacheKeys(name, size)
	logging.Cache().Set(ctx, name, key, ttl.Seconds())
}

// makeRoom libera espacio para una inserción. Debe llamarse con el lock tomado.
func (c *MemoryCache) makeRoom() []string {
	if c.order.Len() < c.capacity {
		return nil
	}

	c.removeExpired()

	var evicted []string
	for c.order.Len() >= c.capacity {
		front := c.order.Front()
		entry := front.Value.(*entities.CacheEntry)
		c.order.Remove(front)
		delete(c.items, entry.Key)
		evicted = append(evicted, entry.Key)
	}
	return evicted
}

// removeExpired debe llamarse con el lock tomado
func (c *MemoryCache) removeExpired() int {
	now := c.now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*entities.CacheEntry)
		if !entry.Visible(now) {
			c.order.Remove(elem)
			delete(c.items, entry.Key)
			removed++
		}
		elem = next
	}
	return removed
}

// Delete elimina una clave; retorna true si existía
func (c *MemoryCache) Delete(ctx context.Context, key string) bool {
	c.mu.Lock()
	elem, ok := c.items[key]
	if ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
	size := c.order.Len()
	c.mu.Unlock()

	if ok {
		metrics.RecordCacheOperation(string(c.name), "delete", "success")
		metrics.UpdateCacheKeys(string(c.name), size)
		logging.Cache().Delete(ctx, string(c.name), key)
	}
	return ok
}

// Flush elimina todas las entradas; los contadores de hits/misses se conservan
func (c *MemoryCache) Flush(ctx context.Context) int {
	c.mu.Lock()
	removed := c.order.Len()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	metrics.RecordCacheOperation(string(c.name), "flush", "success")
	metrics.UpdateCacheKeys(string(c.name), 0)
	logging.Cache().Flushed(ctx, string(c.name), removed)
	return removed
}

// Prune elimina físicamente las entradas expiradas
func (c *MemoryCache) Prune(ctx context.Context) int {
	c.mu.Lock()
	removed := c.removeExpired()
	size := c.order.Len()
	c.mu.Unlock()

	if removed > 0 {
		metrics.RecordCacheOperation(string(c.name), "prune", "success")
	}
	metrics.UpdateCacheKeys(string(c.name), size)
	logging.Cache().Pruned(ctx, string(c.name), removed)
	return removed
}

// Keys retorna las claves vigentes en orden de inserción
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*entities.CacheEntry)
		if entry.Visible(now) {
			keys = append(keys, entry.Key)
		}
	}
	return keys
}

// Entries retorna copias de las entradas vigentes cuya metadata cumple el filtro,
// en orden de inserción. Un filtro nil acepta todo.
func (c *MemoryCache) Entries(filter func(entities.EntryMeta) bool) []entities.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var out []entities.CacheEntry
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*entities.CacheEntry)
		if !entry.Visible(now) {
			continue
		}
		if filter != nil && !filter(entry.Meta) {
			continue
		}
		out = append(out, *entry)
	}
	return out
}

// Stats retorna los contadores; KeyCount solo cuenta entradas vigentes
func (c *MemoryCache) Stats() entities.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	visible := 0
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*entities.CacheEntry).Visible(now) {
			visible++
		}
	}

	return entities.CacheStats{
		HitCount:          c.hits,
		MissCount:         c.misses,
		KeyCount:          visible,
		Capacity:          c.capacity,
		DefaultTTLSeconds: c.defaultTTL.Seconds(),
	}
}

// Size retorna el número físico de entradas (incluye expiradas aún no purgadas)
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
