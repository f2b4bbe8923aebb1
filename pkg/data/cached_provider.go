package data

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.OHLCV
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.OHLCV),
	}
}

// Get returns a copy of the cached series
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores a copy of data
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.OHLCV)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching functionality.
// Failed loads are not cached.
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	logger   *zap.Logger
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider, logger *zap.Logger) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), logger)
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData serves source from the cache, loading it on a miss
func (p *CachedProvider) LoadData(ctx context.Context, source string) ([]types.OHLCV, error) {
	if cachedData, exists := p.cache.Get(source); exists {
		p.logger.Debug("Cache hit", zap.String("source", source), zap.Int("candles", len(cachedData)))
		return cachedData, nil
	}

	data, err := p.provider.LoadData(ctx, source)
	if err != nil {
		p.logger.Error("Failed to load data", zap.String("source", source), zap.Error(err))
		return nil, err
	}

	p.cache.Set(source, data)
	p.logger.Debug("Cached data", zap.String("source", source), zap.Int("candles", len(data)))
	return data, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
