package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryCache implementa Cache sobre go-cache. Os valores são guardados
// serializados em JSON para que Get se comporte como no Redis.
type MemoryCache struct {
	cache   *gocache.Cache
	logger  *zap.Logger
	hits    int64
	misses  int64
	metrics HitRatioRecorder
}

// NewMemoryCache cria uma nova instância de MemoryCache; o janitor do go-cache
// remove itens expirados a cada cleanupInterval
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration, metrics HitRatioRecorder, logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		cache:   gocache.New(defaultExpiration, cleanupInterval),
		logger:  logger,
		metrics: metrics,
	}
}

// Set armazena um valor no cache
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("falha ao serializar para cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.cache.Set(key, data, expiration)
	return nil
}

// Get recupera um valor do cache
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	value, found := c.cache.Get(key)
	if !found {
		c.record(&c.misses)
		return false, nil
	}
	c.record(&c.hits)

	data, ok := value.([]byte)
	if !ok {
		c.logger.Error("valor inesperado no cache", zap.String("key", key))
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Error("falha ao deserializar do cache", zap.String("key", key), zap.Error(err))
		return false, err
	}

	return true, nil
}

// Delete remove um valor do cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear remove todos os valores do cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.cache.Flush()
	return nil
}

// Ping verifica se o cache está funcionando
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// ItemCount retorna o número de itens, incluindo expirados ainda não removidos pelo janitor
func (c *MemoryCache) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *MemoryCache) record(counter *int64) {
	atomic.AddInt64(counter, 1)
	if c.metrics == nil {
		return
	}

	hits := atomic.LoadInt64(&c.hits)
	total := hits + atomic.LoadInt64(&c.misses)
	if total > 0 {
		c.metrics.UpdateCacheHitRatio("memory", float64(hits)/float64(total))
	}
}
