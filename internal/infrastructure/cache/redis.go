package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const (
	// lastFetchKey holds the store-wide last successful fetch timestamp.
	lastFetchKey = "last_fetch_timestamp"
)

// videoJSON is the JSON representation of a Video for caching. Using an
// explicit struct avoids coupling the wire format to the domain model.
type videoJSON struct {
	ID           string   `json:"videoId"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ViewCount    uint64   `json:"viewCount"`
	PublishedAt  string   `json:"publishedAt"`
	ChannelTitle string   `json:"channelTitle"`
	ChannelID    string   `json:"channelId"`
	Link         string   `json:"videoLink"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	CategoryID   string   `json:"categoryId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// RedisTrendingCache implements TrendingCache using Redis as the backing
// store.
type RedisTrendingCache struct {
	client *redis.Client
}

// NewRedisTrendingCache creates a new Redis-backed trending cache.
func NewRedisTrendingCache(client *redis.Client) *RedisTrendingCache {
	return &RedisTrendingCache{
		client: client,
	}
}

// GetVideos retrieves a cached result set from Redis.
// Returns nil, nil on cache miss.
func (c *RedisTrendingCache) GetVideos(ctx context.Context, key string) ([]model.Video, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	videos, err := deserializeVideos(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize videos: %w", err)
	}

	return videos, nil
}

// SetVideos stores a result set in Redis with the specified TTL.
func (c *RedisTrendingCache) SetVideos(ctx context.Context, key string, videos []model.Video, ttl time.Duration) error {
	data, err := serializeVideos(videos)
	if err != nil {
		return fmt.Errorf("serialize videos: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// LastFetchedAt returns the store-wide last successful fetch timestamp.
func (c *RedisTrendingCache) LastFetchedAt(ctx context.Context) (time.Time, error) {
	val, err := c.client.Get(ctx, lastFetchKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis get: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last fetch timestamp: %w", err)
	}

	return t, nil
}

// SetLastFetchedAt overwrites the store-wide last successful fetch
// timestamp. No TTL: the value only feeds health reporting.
func (c *RedisTrendingCache) SetLastFetchedAt(ctx context.Context, t time.Time) error {
	if err := c.client.Set(ctx, lastFetchKey, t.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *RedisTrendingCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func serializeVideos(videos []model.Video) ([]byte, error) {
	out := make([]videoJSON, 0, len(videos))
	for _, v := range videos {
		out = append(out, videoJSON{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			ViewCount:    v.ViewCount,
			PublishedAt:  v.PublishedAt.Format(time.RFC3339Nano),
			ChannelTitle: v.ChannelTitle,
			ChannelID:    v.ChannelID,
			Link:         v.Link,
			ThumbnailURL: v.ThumbnailURL,
			CategoryID:   v.CategoryID,
			Tags:         v.Tags,
		})
	}
	return json.Marshal(out)
}

func deserializeVideos(data []byte) ([]model.Video, error) {
	var wire []videoJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	videos := make([]model.Video, 0, len(wire))
	for _, v := range wire {
		publishedAt, err := time.Parse(time.RFC3339Nano, v.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse published_at: %w", err)
		}

		video, err := model.NewVideo(
			v.ID,
			v.Title,
			v.Description,
			v.ViewCount,
			publishedAt,
			v.ChannelTitle,
			v.ChannelID,
			v.ThumbnailURL,
			v.CategoryID,
			v.Tags,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	return videos, nil
}
