// Package metrics provides Prometheus metrics and request statistics for
// observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trendfeed"

var (
	// RequestsTotal tracks inbound API requests.
	// Labels:
	//   - endpoint: trending, health, stats
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of inbound API requests",
		},
		[]string{"endpoint"},
	)

	// CacheOperationsTotal tracks cache operations.
	// Labels:
	//   - operation: get, set
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// UpstreamRequestsTotal tracks calls to the video platform API.
	// Labels:
	//   - strategy: trending, search, channel
	//   - status: success, error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of video platform API fetches",
		},
		[]string{"strategy", "status"},
	)

	// ScheduledRefreshTotal tracks scheduled category refreshes.
	// Labels:
	//   - status: success, error
	ScheduledRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_refresh_total",
			Help:      "Total number of scheduled category refreshes",
		},
		[]string{"status"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet = "get"
	CacheOpSet = "set"
)

// Upstream strategy constants.
const (
	StrategyTrending = "trending"
	StrategySearch   = "search"
	StrategyChannel  = "channel"
)

// Outcome constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
