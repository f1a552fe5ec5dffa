package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
)

// TrendingCache defines the interface for caching fetched video result
// sets. Implementations handle serialization transparently.
type TrendingCache interface {
	// GetVideos retrieves a cached result set by key.
	// Returns nil, nil on cache miss.
	GetVideos(ctx context.Context, key string) ([]model.Video, error)

	// SetVideos stores a result set under key with the specified TTL.
	SetVideos(ctx context.Context, key string, videos []model.Video, ttl time.Duration) error

	// LastFetchedAt returns the timestamp of the last successful fetch.
	// Returns the zero time, nil when no fetch has been recorded.
	LastFetchedAt(ctx context.Context) (time.Time, error)

	// SetLastFetchedAt records the timestamp of a successful fetch.
	// The value is store-wide and overwritten on every write.
	SetLastFetchedAt(ctx context.Context, t time.Time) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
