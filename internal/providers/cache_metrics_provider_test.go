package providers

import (
	"testing"

	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/stretchr/testify/assert"
)

type assetTestInner struct {
	data map[string][]byte
}

func (c *assetTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *assetTestInner) Set(key string, value []byte) {
	c.data[key] = value
}

func TestAssetCacheProvider_Hit(t *testing.T) {
	inner := &assetTestInner{data: map[string][]byte{"key1": []byte("val1")}}
	metrics := &recordingMetrics{}
	cache := &AssetCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("val1"), val)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 0, metrics.misses)
}

func TestAssetCacheProvider_Miss(t *testing.T) {
	inner := &assetTestInner{data: map[string][]byte{}}
	metrics := &recordingMetrics{}
	cache := &AssetCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestAssetCacheProvider_SetDelegates(t *testing.T) {
	inner := &assetTestInner{data: map[string][]byte{}}
	cache := &AssetCacheProvider{inner: inner, metrics: &recordingMetrics{}}

	cache.Set("key2", []byte("val2"))

	val, ok := inner.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, []byte("val2"), val)
}

func TestNewAssetCacheProvider_DisabledSkipsMetrics(t *testing.T) {
	conf := &structures.Config{Cache: structures.CacheConfig{Enabled: false}}
	metrics := &recordingMetrics{}

	cache := NewAssetCacheProvider(conf, &cacheTestLogger{}, metrics)
	assert.IsType(t, &noopCache{}, cache)

	_, ok := cache.Get("asset")
	assert.False(t, ok)
	assert.Equal(t, 0, metrics.misses)
}

func TestNewAssetCacheProvider_EnabledCountsLookups(t *testing.T) {
	conf := &structures.Config{Cache: structures.CacheConfig{Enabled: true, Size: 1}}
	metrics := &recordingMetrics{}

	cache := NewAssetCacheProvider(conf, &cacheTestLogger{}, metrics)
	assert.IsType(t, &AssetCacheProvider{}, cache)

	cache.Get("asset")
	cache.Set("asset", []byte("png"))
	cache.Get("asset")

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}
