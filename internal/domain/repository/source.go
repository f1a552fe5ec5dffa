package repository

import (
	"context"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
)

// VideoSource defines the interface for fetching video metadata from the
// remote platform. Implementations are provided by the infrastructure
// layer (e.g. the YouTube Data API client).
type VideoSource interface {
	// FetchTrending returns the most popular videos for a region,
	// optionally restricted to a category id. maxResults is clamped to
	// the platform's [1,50] window.
	FetchTrending(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.Video, error)

	// SearchVideos returns videos matching a query, ordered by view
	// count. Returns an empty slice (not an error) when nothing matches.
	SearchVideos(ctx context.Context, query, regionCode string, maxResults int) ([]model.Video, error)

	// FetchChannelVideos returns a channel's videos, newest first.
	// Returns an empty slice when the channel has no videos.
	FetchChannelVideos(ctx context.Context, channelID string, maxResults int) ([]model.Video, error)
}
