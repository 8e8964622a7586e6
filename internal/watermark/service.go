package watermark

import (
	"context"
)

// Service turns a submitted image URL into a watermarked JPEG.
type Service struct {
	fetcher    AssetFetcher
	compositor *Compositor
}

func NewService(fetcher AssetFetcher, compositor *Compositor) *Service {
	return &Service{fetcher: fetcher, compositor: compositor}
}

func (s *Service) Watermark(ctx context.Context, imageURL string) ([]byte, error) {
	base, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	mark, err := s.fetcher.Watermark(ctx)
	if err != nil {
		return nil, err
	}
	return s.compositor.CompositeBytes(base, mark)
}
