// Package youtube implements the YouTube Data API v3 client with retry
// and backoff handling.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultTimeout = 30 * time.Second

	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second

	// The platform accepts maxResults in [1,50].
	minPageSize = 1
	maxPageSize = 50

	videoParts = "snippet,statistics,contentDetails"
)

// Config holds configuration for the API client.
type Config struct {
	// APIKey is the YouTube Data API v3 key. Required.
	APIKey string
	// BaseURL overrides the API base URL. Used by tests.
	BaseURL string
	// Timeout is the per-call transport timeout.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration (API key unset).
func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// Client is a YouTube Data API v3 client. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// sleep is swapped out in tests to make the backoff schedule
	// observable without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an API client. The API key is required.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		sleep:      sleepContext,
	}, nil
}

// FetchTrending fetches the most popular videos for a region, optionally
// restricted to a category id.
func (c *Client) FetchTrending(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.Video, error) {
	maxResults = clampPageSize(maxResults)

	params := url.Values{}
	params.Set("part", videoParts)
	params.Set("chart", "mostPopular")
	params.Set("regionCode", strings.ToUpper(regionCode))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if categoryID != "" {
		params.Set("videoCategoryId", categoryID)
	}

	c.logger.Info("fetching trending videos",
		slog.String("region", regionCode),
		slog.String("category_id", categoryID),
		slog.Int("max_results", maxResults),
	)

	resp, err := c.doRequest(ctx, "videos", params)
	if err != nil {
		return nil, err
	}

	return c.parseVideoItems(resp.Items), nil
}

// SearchVideos searches videos by keyword, ordered by view count. The
// search endpoint only returns ids, so full metadata is joined via a
// single batched videos call.
func (c *Client) SearchVideos(ctx context.Context, query, regionCode string, maxResults int) ([]model.Video, error) {
	maxResults = clampPageSize(maxResults)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("regionCode", strings.ToUpper(regionCode))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("order", "viewCount")

	c.logger.Info("searching videos",
		slog.String("query", query),
		slog.String("region", regionCode),
	)

	ids, err := c.searchVideoIDs(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.logger.Info("no videos found for search query", slog.String("query", query))
		return []model.Video{}, nil
	}

	return c.fetchByIDs(ctx, ids)
}

// FetchChannelVideos fetches a channel's videos, newest first. Same
// two-phase pattern as SearchVideos.
func (c *Client) FetchChannelVideos(ctx context.Context, channelID string, maxResults int) ([]model.Video, error) {
	maxResults = clampPageSize(maxResults)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(maxResults))

	c.logger.Info("fetching channel videos", slog.String("channel_id", channelID))

	ids, err := c.searchVideoIDs(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.logger.Info("no videos found for channel", slog.String("channel_id", channelID))
		return []model.Video{}, nil
	}

	return c.fetchByIDs(ctx, ids)
}

// TestConnection performs a minimal trending call to verify the API key
// and reachability. It never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", "US")
	params.Set("maxResults", "1")

	if _, err := c.doRequest(ctx, "videos", params); err != nil {
		c.logger.Error("youtube API connection test failed", slog.Any("error", err))
		return false
	}
	return true
}

// searchVideoIDs runs a search call and extracts the matched video ids.
func (c *Client) searchVideoIDs(ctx context.Context, params url.Values) ([]string, error) {
	resp, err := c.doRequest(ctx, "search", params)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, raw := range resp.Items {
		var item searchItem
		if err := json.Unmarshal(raw, &item); err != nil || item.ID.VideoID == "" {
			c.logger.Warn("skipping malformed search item", slog.Any("error", err))
			continue
		}
		ids = append(ids, item.ID.VideoID)
	}
	return ids, nil
}

// fetchByIDs fetches full metadata for a set of video ids in one call.
func (c *Client) fetchByIDs(ctx context.Context, ids []string) ([]model.Video, error) {
	params := url.Values{}
	params.Set("part", videoParts)
	params.Set("id", strings.Join(ids, ","))

	resp, err := c.doRequest(ctx, "videos", params)
	if err != nil {
		return nil, err
	}

	return c.parseVideoItems(resp.Items), nil
}

type apiResponse struct {
	Items []json.RawMessage `json:"items"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		PublishedAt  string   `json:"publishedAt"`
		ChannelTitle string   `json:"channelTitle"`
		ChannelID    string   `json:"channelId"`
		CategoryID   string   `json:"categoryId"`
		Tags         []string `json:"tags"`
		Thumbnails   struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// doRequest issues one API call with a bounded retry loop. 429 responses
// and transport errors are retried with exponential backoff; any other
// status >= 400 fails immediately.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*apiResponse, error) {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	for attempt := 0; ; attempt++ {
		resp, retryable, err := c.attempt(ctx, endpoint, reqURL)
		if err == nil {
			return resp, nil
		}
		if !retryable || attempt >= maxRetries {
			return nil, err
		}

		backoff := backoffFor(attempt)
		c.logger.Warn("retrying youtube API request",
			slog.String("endpoint", endpoint),
			slog.Duration("backoff", backoff),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries),
			slog.Any("error", err),
		)
		if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
			return nil, &APIError{Kind: KindTransport, Err: sleepErr}
		}
	}
}

// attempt performs a single HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, endpoint, reqURL string) (resp *apiResponse, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, &APIError{Kind: KindTransport, Err: err}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, &APIError{Kind: KindTransport, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, httpResp.Body)
		return nil, true, &APIError{
			Kind:       KindRateLimited,
			StatusCode: httpResp.StatusCode,
			Message:    "rate limit exceeded",
		}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, true, &APIError{Kind: KindTransport, Err: fmt.Errorf("read response body: %w", err)}
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		var errBody apiErrorBody
		message := "unknown error"
		if jsonErr := json.Unmarshal(body, &errBody); jsonErr == nil && errBody.Error.Message != "" {
			message = errBody.Error.Message
		}
		c.logger.Error("youtube API error",
			slog.String("endpoint", endpoint),
			slog.Int("status", httpResp.StatusCode),
			slog.String("message", message),
		)
		return nil, false, &APIError{
			Kind:       KindUpstream,
			StatusCode: httpResp.StatusCode,
			Message:    message,
		}
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, true, &APIError{Kind: KindTransport, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &parsed, false, nil
}

// parseVideoItems converts raw response items into Video records. Each
// item is parsed independently; malformed items are dropped with a
// warning so one bad record never aborts the batch.
func (c *Client) parseVideoItems(items []json.RawMessage) []model.Video {
	videos := make([]model.Video, 0, len(items))

	for _, raw := range items {
		video, err := parseVideoItem(raw)
		if err != nil {
			c.logger.Warn("skipping malformed video item", slog.Any("error", err))
			continue
		}
		videos = append(videos, video)
	}

	return videos
}

func parseVideoItem(raw json.RawMessage) (model.Video, error) {
	var item videoItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.Video{}, fmt.Errorf("unmarshal item: %w", err)
	}

	viewCount := uint64(0)
	if item.Statistics.ViewCount != "" {
		n, err := strconv.ParseUint(item.Statistics.ViewCount, 10, 64)
		if err != nil {
			return model.Video{}, fmt.Errorf("parse view count %q: %w", item.Statistics.ViewCount, err)
		}
		viewCount = n
	}

	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return model.Video{}, fmt.Errorf("parse published_at %q: %w", item.Snippet.PublishedAt, err)
	}

	return model.NewVideo(
		item.ID,
		item.Snippet.Title,
		item.Snippet.Description,
		viewCount,
		publishedAt,
		item.Snippet.ChannelTitle,
		item.Snippet.ChannelID,
		item.Snippet.Thumbnails.High.URL,
		item.Snippet.CategoryID,
		item.Snippet.Tags,
	)
}

// backoffFor computes the backoff before retrying after the given
// zero-based attempt: 1s, 2s, 4s, ... capped at 60s.
func backoffFor(attempt int) time.Duration {
	backoff := initialBackoff << uint(attempt)
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}

func clampPageSize(n int) int {
	if n < minPageSize {
		return minPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
