package providers

import "github.com/Duffman2k/duffvouchbot/internal/structures"

// AssetCacheProvider counts hits and misses of the watermark asset cache.
type AssetCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *AssetCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *AssetCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

// NewAssetCacheProvider returns the plain noop cache when caching is off so
// every fetch is not reported as a miss.
func NewAssetCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &AssetCacheProvider{inner: inner, metrics: metrics}
}
