package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
)

// ErrCacheDisabled is returned by NoopTrendingCache.Ping.
var ErrCacheDisabled = errors.New("cache is disabled")

// NoopTrendingCache is used when Redis is disabled by configuration.
// Reads always miss and writes are discarded, so every fetch degrades to
// the no-cache path.
type NoopTrendingCache struct{}

// NewNoopTrendingCache creates a cache that never stores anything.
func NewNoopTrendingCache() *NoopTrendingCache {
	return &NoopTrendingCache{}
}

func (NoopTrendingCache) GetVideos(ctx context.Context, key string) ([]model.Video, error) {
	return nil, nil
}

func (NoopTrendingCache) SetVideos(ctx context.Context, key string, videos []model.Video, ttl time.Duration) error {
	return nil
}

func (NoopTrendingCache) LastFetchedAt(ctx context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func (NoopTrendingCache) SetLastFetchedAt(ctx context.Context, t time.Time) error {
	return nil
}

func (NoopTrendingCache) Ping(ctx context.Context) error {
	return ErrCacheDisabled
}
