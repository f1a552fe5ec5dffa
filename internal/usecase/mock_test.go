package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
)

// mockVideoSource is a configurable mock for repository.VideoSource.
type mockVideoSource struct {
	fetchTrendingFn func(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.Video, error)
	searchFn        func(ctx context.Context, query, regionCode string, maxResults int) ([]model.Video, error)
	channelFn       func(ctx context.Context, channelID string, maxResults int) ([]model.Video, error)

	trendingCalls atomic.Int32
	searchCalls   atomic.Int32
	channelCalls  atomic.Int32
}

func (m *mockVideoSource) FetchTrending(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.Video, error) {
	m.trendingCalls.Add(1)
	if m.fetchTrendingFn != nil {
		return m.fetchTrendingFn(ctx, regionCode, categoryID, maxResults)
	}
	return nil, nil
}

func (m *mockVideoSource) SearchVideos(ctx context.Context, query, regionCode string, maxResults int) ([]model.Video, error) {
	m.searchCalls.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, query, regionCode, maxResults)
	}
	return nil, nil
}

func (m *mockVideoSource) FetchChannelVideos(ctx context.Context, channelID string, maxResults int) ([]model.Video, error) {
	m.channelCalls.Add(1)
	if m.channelFn != nil {
		return m.channelFn(ctx, channelID, maxResults)
	}
	return nil, nil
}

func (m *mockVideoSource) totalCalls() int32 {
	return m.trendingCalls.Load() + m.searchCalls.Load() + m.channelCalls.Load()
}

// mockTrendingCache is a configurable in-memory mock for
// cache.TrendingCache.
type mockTrendingCache struct {
	mu        sync.RWMutex
	videos    map[string][]model.Video
	lastFetch time.Time

	getFn func(ctx context.Context, key string) ([]model.Video, error)
	setFn func(ctx context.Context, key string, videos []model.Video, ttl time.Duration) error
}

func newMockTrendingCache() *mockTrendingCache {
	return &mockTrendingCache{
		videos: make(map[string][]model.Video),
	}
}

func (m *mockTrendingCache) GetVideos(ctx context.Context, key string) ([]model.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.videos[key], nil
}

func (m *mockTrendingCache) SetVideos(ctx context.Context, key string, videos []model.Video, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, videos, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[key] = videos
	return nil
}

func (m *mockTrendingCache) LastFetchedAt(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastFetch, nil
}

func (m *mockTrendingCache) SetLastFetchedAt(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFetch = t
	return nil
}

func (m *mockTrendingCache) Ping(ctx context.Context) error {
	return nil
}
