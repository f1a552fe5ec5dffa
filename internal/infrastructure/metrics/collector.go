package metrics

import (
	"sync/atomic"
	"time"
)

// Collector accumulates request-level statistics for the /stats
// endpoint. It is explicitly constructed and injected rather than kept as
// process-wide state, and is safe for concurrent use.
type Collector struct {
	startedAt     time.Time
	totalRequests atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// NewCollector creates a Collector with the uptime clock started now.
func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
	}
}

// RecordRequest counts an inbound API request.
func (c *Collector) RecordRequest(endpoint string) {
	c.totalRequests.Add(1)
	RequestsTotal.WithLabelValues(endpoint).Inc()
}

// RecordCacheHit counts a request served from cache.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Add(1)
}

// RecordCacheMiss counts a request served by a live fetch.
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Add(1)
}

// Snapshot is a point-in-time view of the collected statistics.
type Snapshot struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	CacheHitRate  float64
	Uptime        time.Duration
}

// Snapshot returns the current statistics. The hit rate is 0 when no
// cache-relevant request has been served yet.
func (c *Collector) Snapshot() Snapshot {
	hits := c.cacheHits.Load()
	misses := c.cacheMisses.Load()

	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Snapshot{
		TotalRequests: c.totalRequests.Load(),
		CacheHits:     hits,
		CacheMisses:   misses,
		CacheHitRate:  rate,
		Uptime:        time.Since(c.startedAt),
	}
}
