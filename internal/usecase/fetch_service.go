package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
	"github.com/hszk-dev/trendfeed/internal/domain/repository"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/cache"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/metrics"
)

const (
	// cacheKeyPrefix namespaces trending result sets in the cache store.
	cacheKeyPrefix = "trending"

	dateLayout = "2006-01-02"
)

// Source identifies which path produced a fetch result.
type Source string

const (
	// SourceLive means the result came from a fresh platform fetch.
	SourceLive Source = "live"
	// SourceCache means the result was served from a cache hit.
	SourceCache Source = "cache"
	// SourceFallback means the live fetch failed and a stale cache entry
	// was served instead.
	SourceFallback Source = "fallback"
)

// FetchQuery describes one trending request.
type FetchQuery struct {
	// Country is the ISO 3166-1 alpha-2 region code.
	Country string
	// Category is a category name or id. Optional.
	Category string
	// Keyword switches to the search strategy. Optional.
	Keyword string
	// ChannelID switches to the channel strategy. Optional, takes
	// priority over Keyword.
	ChannelID string
	// Date (YYYY-MM-DD) discriminates cache entries; defaults to the
	// current UTC date.
	Date string
	// Limit caps the returned slice. Applied after any filtering, on
	// every return path.
	Limit int
	// ForceRefresh bypasses the cache read (the result is still written
	// back).
	ForceRefresh bool
}

// FetchResult carries the fetched videos together with their provenance,
// so callers cannot silently ignore whether a fallback occurred.
type FetchResult struct {
	Videos []model.Video
	Source Source
}

// FromCache reports whether the result was served from the cache store,
// either as a regular hit or as a stale fallback.
func (r *FetchResult) FromCache() bool {
	return r.Source != SourceLive
}

// TrendingFetcher defines the interface for the fetch orchestrator.
type TrendingFetcher interface {
	// FetchTrending resolves a query to a video list, consulting the
	// cache first and falling back to a stale entry if the live fetch
	// fails. The error is the underlying platform error and is only
	// returned when no cached entry exists either.
	FetchTrending(ctx context.Context, q FetchQuery) (*FetchResult, error)
}

// FetchServiceConfig holds configuration for the fetch orchestrator.
type FetchServiceConfig struct {
	// CacheTTL is the expiry applied to cached result sets.
	CacheTTL time.Duration
}

// DefaultFetchServiceConfig returns the default configuration.
func DefaultFetchServiceConfig() FetchServiceConfig {
	return FetchServiceConfig{
		CacheTTL: 24 * time.Hour,
	}
}

type fetchService struct {
	source repository.VideoSource
	cache  cache.TrendingCache
	logger *slog.Logger

	cacheTTL time.Duration
	now      func() time.Time
}

// NewFetchService creates the fetch orchestrator.
func NewFetchService(
	source repository.VideoSource,
	trendingCache cache.TrendingCache,
	cfg FetchServiceConfig,
	logger *slog.Logger,
) TrendingFetcher {
	return &fetchService{
		source:   source,
		cache:    trendingCache,
		logger:   logger,
		cacheTTL: cfg.CacheTTL,
		now:      time.Now,
	}
}

func (s *fetchService) FetchTrending(ctx context.Context, q FetchQuery) (*FetchResult, error) {
	key := s.buildCacheKey(q)

	if !q.ForceRefresh {
		if cached := s.readCache(ctx, key); cached != nil {
			return &FetchResult{
				Videos: truncate(cached, q.Limit),
				Source: SourceCache,
			}, nil
		}
	}

	videos, err := s.fetchLive(ctx, q)
	if err != nil {
		s.logger.Error("live fetch failed, trying cache fallback",
			slog.String("cache_key", key),
			slog.Any("error", err),
		)
		if cached := s.readCache(ctx, key); cached != nil {
			s.logger.Info("serving stale cached data as fallback", slog.String("cache_key", key))
			return &FetchResult{
				Videos: truncate(cached, q.Limit),
				Source: SourceFallback,
			}, nil
		}
		return nil, err
	}

	// Keyword filtering applies whenever a keyword is present and the
	// channel strategy was not used.
	if q.Keyword != "" && q.ChannelID == "" {
		videos = s.filterByKeyword(videos, q.Keyword)
	}

	// The full pre-truncation result is cached so later requests with a
	// larger limit can still be served from it.
	if len(videos) > 0 {
		s.writeCache(ctx, key, videos)
	}

	return &FetchResult{
		Videos: truncate(videos, q.Limit),
		Source: SourceLive,
	}, nil
}

// fetchLive executes one of the three mutually exclusive fetch
// strategies, checked in fixed priority order: channel, keyword search,
// trending by category.
func (s *fetchService) fetchLive(ctx context.Context, q FetchQuery) ([]model.Video, error) {
	switch {
	case q.ChannelID != "":
		s.logger.Info("fetching videos from channel", slog.String("channel_id", q.ChannelID))
		videos, err := s.source.FetchChannelVideos(ctx, q.ChannelID, q.Limit)
		recordUpstream(metrics.StrategyChannel, err)
		return videos, err

	case q.Keyword != "":
		s.logger.Info("searching videos by keyword", slog.String("keyword", q.Keyword))
		videos, err := s.source.SearchVideos(ctx, q.Keyword, q.Country, q.Limit)
		recordUpstream(metrics.StrategySearch, err)
		return videos, err

	default:
		categoryID := ""
		if q.Category != "" {
			categoryID = model.ResolveCategoryID(q.Category)
		}
		s.logger.Info("fetching trending videos",
			slog.String("country", q.Country),
			slog.String("category_id", categoryID),
		)
		videos, err := s.source.FetchTrending(ctx, q.Country, categoryID, q.Limit)
		recordUpstream(metrics.StrategyTrending, err)
		return videos, err
	}
}

// buildCacheKey derives the deterministic cache key for a query. The
// optional discriminators are appended in fixed order with distinct
// prefixes so e.g. a category and a keyword with the same value cannot
// collide.
func (s *fetchService) buildCacheKey(q FetchQuery) string {
	date := q.Date
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	}

	parts := []string{cacheKeyPrefix, q.Country, date}
	if q.Category != "" {
		parts = append(parts, "cat_"+q.Category)
	}
	if q.Keyword != "" {
		parts = append(parts, "kw_"+q.Keyword)
	}
	if q.ChannelID != "" {
		parts = append(parts, "ch_"+q.ChannelID)
	}

	return strings.Join(parts, ":")
}

// readCache returns the cached result set for key, or nil on miss.
// Cache errors degrade to a miss: caching is best-effort, never a hard
// dependency.
func (s *fetchService) readCache(ctx context.Context, key string) []model.Video {
	videos, err := s.cache.GetVideos(ctx, key)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		s.logger.Warn("cache read failed, treating as miss",
			slog.String("cache_key", key),
			slog.Any("error", err),
		)
		return nil
	}
	if len(videos) == 0 {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()
		return nil
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
	s.logger.Info("cache hit", slog.String("cache_key", key), slog.Int("videos", len(videos)))
	return videos
}

// writeCache stores the result set and bumps the last-fetch timestamp.
// Errors are logged and swallowed.
func (s *fetchService) writeCache(ctx context.Context, key string, videos []model.Video) {
	if err := s.cache.SetVideos(ctx, key, videos, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError).Inc()
		s.logger.Warn("cache write failed",
			slog.String("cache_key", key),
			slog.Any("error", err),
		)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
	s.logger.Info("cached videos", slog.String("cache_key", key), slog.Int("videos", len(videos)))

	if err := s.cache.SetLastFetchedAt(ctx, s.now().UTC()); err != nil {
		s.logger.Warn("failed to update last fetch timestamp", slog.Any("error", err))
	}
}

// filterByKeyword keeps records whose title, description, or tags contain
// the keyword (case-insensitive).
func (s *fetchService) filterByKeyword(videos []model.Video, keyword string) []model.Video {
	filtered := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if v.MatchesKeyword(keyword) {
			filtered = append(filtered, v)
		}
	}

	s.logger.Info("filtered videos by keyword",
		slog.String("keyword", keyword),
		slog.Int("before", len(videos)),
		slog.Int("after", len(filtered)),
	)
	return filtered
}

func recordUpstream(strategy string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(strategy, status).Inc()
}

// truncate applies the request limit as the last step on a return path.
func truncate(videos []model.Video, limit int) []model.Video {
	if limit > 0 && len(videos) > limit {
		return videos[:limit]
	}
	return videos
}
