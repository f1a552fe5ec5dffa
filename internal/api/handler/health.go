package handler

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/trendfeed/internal/infrastructure/cache"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/metrics"
)

// ConnectionTester checks reachability of the remote video platform.
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

type HealthResponse struct {
	Status           string     `json:"status"`
	Timestamp        time.Time  `json:"timestamp"`
	CacheConnected   bool       `json:"redisConnected"`
	LastFetch        *time.Time `json:"lastFetch,omitempty"`
	YouTubeAPIStatus string     `json:"youtubeApiStatus"`
}

type StatsResponse struct {
	TotalRequests int64      `json:"totalRequests"`
	LastFetch     *time.Time `json:"lastFetchTimestamp,omitempty"`
	CacheHitRate  float64    `json:"cacheHitRate"`
	UptimeSeconds float64    `json:"uptimeSeconds"`
}

// HealthHandler reports service health and request statistics.
type HealthHandler struct {
	cache  cache.TrendingCache
	tester ConnectionTester
	stats  *metrics.Collector

	// probeGroup coalesces concurrent upstream liveness probes so a
	// burst of health checks costs one platform call.
	probeGroup singleflight.Group
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(trendingCache cache.TrendingCache, tester ConnectionTester, stats *metrics.Collector) *HealthHandler {
	return &HealthHandler{
		cache:  trendingCache,
		tester: tester,
		stats:  stats,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.stats.RecordRequest("health")
	ctx := r.Context()

	cacheConnected := h.cache.Ping(ctx) == nil

	apiStatus := "error"
	// The coalesced check runs on a detached context: the winning
	// request being canceled must not fail the check for every waiter
	// sharing its result.
	probeCtx := context.WithoutCancel(ctx)
	ok, _, _ := h.probeGroup.Do("youtube", func() (any, error) {
		return h.tester.TestConnection(probeCtx), nil
	})
	if ok.(bool) {
		apiStatus = "ok"
	}

	JSON(w, http.StatusOK, HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now().UTC(),
		CacheConnected:   cacheConnected,
		LastFetch:        h.lastFetch(ctx),
		YouTubeAPIStatus: apiStatus,
	})
}

// Stats handles GET /stats
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	h.stats.RecordRequest("stats")

	snap := h.stats.Snapshot()
	JSON(w, http.StatusOK, StatsResponse{
		TotalRequests: snap.TotalRequests,
		LastFetch:     h.lastFetch(r.Context()),
		CacheHitRate:  snap.CacheHitRate,
		UptimeSeconds: snap.Uptime.Seconds(),
	})
}

func (h *HealthHandler) lastFetch(ctx context.Context) *time.Time {
	t, err := h.cache.LastFetchedAt(ctx)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}
