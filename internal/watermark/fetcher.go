package watermark

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"golang.org/x/sync/singleflight"
)

const maxAssetBytes = 20 << 20 // 20 MB

type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Watermark(ctx context.Context) ([]byte, error)
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	markURL   string
	cache     providers.CacheProviderInterface
	logger    providers.Logger
	group     singleflight.Group
}

func NewFetcher(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: conf.Watermark.FetchTimeout},
		userAgent: conf.Watermark.UserAgent,
		markURL:   conf.Watermark.URL,
		cache:     cache,
		logger:    logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.FetchError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.FetchError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, &models.FetchError{URL: url, Err: err}
	}
	if len(data) > maxAssetBytes {
		return nil, &models.FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", maxAssetBytes)}
	}
	return data, nil
}

// Watermark returns the branding asset. Concurrent callers share one request
// and the bytes stay cached for watermark.cacheTTL.
func (f *Fetcher) Watermark(ctx context.Context) ([]byte, error) {
	key := "asset:" + f.markURL
	if data, ok := f.cache.Get(key); ok {
		return data, nil
	}

	v, err, shared := f.group.Do(key, func() (interface{}, error) {
		data, err := f.Fetch(ctx, f.markURL)
		if err != nil {
			return nil, err
		}
		f.cache.Set(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if !shared {
		f.logger.Debugf(providers.TypeBot, "Fetched watermark asset %s", f.markURL)
	}
	return v.([]byte), nil
}
