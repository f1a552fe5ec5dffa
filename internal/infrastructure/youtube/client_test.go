package youtube

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const trendingItemJSON = `{
	"id": "test123",
	"snippet": {
		"title": "Amazing Video Title",
		"description": "This is an amazing video...",
		"publishedAt": "2025-11-10T12:34:56Z",
		"channelTitle": "Cool Channel",
		"channelId": "UCxxxxxxx",
		"categoryId": "10",
		"tags": ["music", "lofi", "chill"],
		"thumbnails": {"high": {"url": "https://i.ytimg.com/vi/test123/hq.jpg"}}
	},
	"statistics": {"viewCount": "1234567"}
}`

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: baseURL}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewClient(Config{}, logger); err == nil {
		t.Error("expected error for missing API key, got nil")
	}
}

func TestFetchTrending_ParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("chart"); got != "mostPopular" {
			t.Errorf("chart = %q, want mostPopular", got)
		}
		if got := r.URL.Query().Get("regionCode"); got != "ID" {
			t.Errorf("regionCode = %q, want ID", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		io.WriteString(w, `{"items": [`+trendingItemJSON+`]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.FetchTrending(context.Background(), "id", "", 10)
	if err != nil {
		t.Fatalf("FetchTrending failed: %v", err)
	}

	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1", len(videos))
	}

	v := videos[0]
	if v.ID != "test123" {
		t.Errorf("ID = %q, want test123", v.ID)
	}
	if v.ViewCount != 1234567 {
		t.Errorf("ViewCount = %d, want 1234567", v.ViewCount)
	}
	if v.Link != "https://www.youtube.com/watch?v=test123" {
		t.Errorf("Link = %q", v.Link)
	}
	wantTime := time.Date(2025, 11, 10, 12, 34, 56, 0, time.UTC)
	if !v.PublishedAt.Equal(wantTime) {
		t.Errorf("PublishedAt = %v, want %v", v.PublishedAt, wantTime)
	}
	if len(v.Tags) != 3 {
		t.Errorf("len(Tags) = %d, want 3", len(v.Tags))
	}
}

func TestFetchTrending_ClampsMaxResults(t *testing.T) {
	testCases := []struct {
		name string
		in   int
		want string
	}{
		{"above cap", 500, "50"},
		{"below floor", 0, "1"},
		{"in range", 25, "25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotMax atomic.Value
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMax.Store(r.URL.Query().Get("maxResults"))
				io.WriteString(w, `{"items": []}`)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			if _, err := client.FetchTrending(context.Background(), "US", "", tc.in); err != nil {
				t.Fatalf("FetchTrending failed: %v", err)
			}

			if got := gotMax.Load().(string); got != tc.want {
				t.Errorf("maxResults = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFetchTrending_DropsMalformedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": [
			`+trendingItemJSON+`,
			{"id": "bad1", "snippet": {"publishedAt": "not-a-date"}, "statistics": {}},
			{"id": "bad2", "snippet": {"publishedAt": "2025-11-10T12:00:00Z"}, "statistics": {"viewCount": "not-a-number"}},
			{"id": "", "snippet": {"publishedAt": "2025-11-10T12:00:00Z"}, "statistics": {}}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err != nil {
		t.Fatalf("FetchTrending failed: %v", err)
	}

	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1 (malformed items must be dropped)", len(videos))
	}
	if videos[0].ID != "test123" {
		t.Errorf("ID = %q, want test123", videos[0].ID)
	}
}

func TestFetchTrending_MissingViewCountIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": [
			{"id": "novc", "snippet": {"title": "T", "publishedAt": "2025-11-10T12:00:00Z"}, "statistics": {}}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err != nil {
		t.Fatalf("FetchTrending failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1", len(videos))
	}
	if videos[0].ViewCount != 0 {
		t.Errorf("ViewCount = %d, want 0", videos[0].ViewCount)
	}
}

func TestDoRequest_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"items": [`+trendingItemJSON+`]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var sleeps []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	videos, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err != nil {
		t.Fatalf("FetchTrending failed after retries: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("len(videos) = %d, want 1", len(videos))
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("len(sleeps) = %d, want %d", len(sleeps), len(want))
	}
	for i, d := range want {
		if sleeps[i] != d {
			t.Errorf("sleeps[%d] = %v, want %v", i, sleeps[i], d)
		}
	}
}

func TestDoRequest_RateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != KindRateLimited {
		t.Errorf("Kind = %v, want %v", apiErr.Kind, KindRateLimited)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("calls = %d, want 4 (1 initial + 3 retries)", got)
	}
}

func TestDoRequest_UpstreamErrorFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error": {"message": "quotaExceeded"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != KindUpstream {
		t.Errorf("Kind = %v, want %v", apiErr.Kind, KindUpstream)
	}
	if apiErr.Message != "quotaExceeded" {
		t.Errorf("Message = %q, want quotaExceeded", apiErr.Message)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-429)", got)
	}
}

func TestDoRequest_TransportErrorIsRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Connection refused from the first attempt

	client := newTestClient(t, srv.URL)

	var sleeps int
	client.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	_, err := client.FetchTrending(context.Background(), "US", "", 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != KindTransport {
		t.Errorf("Kind = %v, want %v", apiErr.Kind, KindTransport)
	}
	if sleeps != 3 {
		t.Errorf("sleeps = %d, want 3", sleeps)
	}
}

func TestSearchVideos_TwoPhase(t *testing.T) {
	var videoCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			if got := r.URL.Query().Get("order"); got != "viewCount" {
				t.Errorf("order = %q, want viewCount", got)
			}
			if got := r.URL.Query().Get("type"); got != "video" {
				t.Errorf("type = %q, want video", got)
			}
			io.WriteString(w, `{"items": [{"id": {"videoId": "test123"}}, {"id": {"videoId": "other456"}}]}`)
		case "/videos":
			videoCalls.Add(1)
			if got := r.URL.Query().Get("id"); got != "test123,other456" {
				t.Errorf("id = %q, want test123,other456", got)
			}
			io.WriteString(w, `{"items": [`+trendingItemJSON+`]}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.SearchVideos(context.Background(), "lofi", "ID", 10)
	if err != nil {
		t.Fatalf("SearchVideos failed: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("len(videos) = %d, want 1", len(videos))
	}
	if got := videoCalls.Load(); got != 1 {
		t.Errorf("videos endpoint called %d times, want 1 (batched)", got)
	}
}

func TestSearchVideos_EmptySearchReturnsEmpty(t *testing.T) {
	var videoCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			io.WriteString(w, `{"items": []}`)
		case "/videos":
			videoCalls.Add(1)
			io.WriteString(w, `{"items": []}`)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.SearchVideos(context.Background(), "nosuchthing", "ID", 10)
	if err != nil {
		t.Fatalf("SearchVideos failed: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("len(videos) = %d, want 0", len(videos))
	}
	if got := videoCalls.Load(); got != 0 {
		t.Errorf("videos endpoint called %d times, want 0", got)
	}
}

func TestFetchChannelVideos_OrdersByDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			if got := r.URL.Query().Get("channelId"); got != "UC123456" {
				t.Errorf("channelId = %q, want UC123456", got)
			}
			if got := r.URL.Query().Get("order"); got != "date" {
				t.Errorf("order = %q, want date", got)
			}
			io.WriteString(w, `{"items": [{"id": {"videoId": "test123"}}]}`)
		case "/videos":
			io.WriteString(w, `{"items": [`+trendingItemJSON+`]}`)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	videos, err := client.FetchChannelVideos(context.Background(), "UC123456", 10)
	if err != nil {
		t.Fatalf("FetchChannelVideos failed: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("len(videos) = %d, want 1", len(videos))
	}
}

func TestTestConnection(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "1" {
			t.Errorf("maxResults = %q, want 1", got)
		}
		io.WriteString(w, `{"items": []}`)
	}))
	defer okSrv.Close()

	if !newTestClient(t, okSrv.URL).TestConnection(context.Background()) {
		t.Error("TestConnection = false, want true")
	}

	badSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badSrv.Close()

	if newTestClient(t, badSrv.URL).TestConnection(context.Background()) {
		t.Error("TestConnection = true, want false")
	}
}

func TestBackoffFor(t *testing.T) {
	testCases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
	}

	for _, tc := range testCases {
		if got := backoffFor(tc.attempt); got != tc.want {
			t.Errorf("backoffFor(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
