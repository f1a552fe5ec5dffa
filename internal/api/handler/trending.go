package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/trendfeed/internal/domain/model"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/metrics"
	"github.com/hszk-dev/trendfeed/internal/usecase"
)

const (
	minLimit = 1
	maxLimit = 50

	dateLayout = "2006-01-02"
)

// Request/Response types

type MetaPayload struct {
	Total     int       `json:"total"`
	Limit     int       `json:"limit"`
	Page      int       `json:"page"`
	FetchedAt time.Time `json:"fetchedAt"`
	FromCache bool      `json:"fromCache"`
}

type VideoPayload struct {
	ID           string    `json:"videoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ViewCount    uint64    `json:"viewCount"`
	PublishedAt  time.Time `json:"publishedAt"`
	ChannelTitle string    `json:"channelTitle"`
	ChannelID    string    `json:"channelId"`
	Link         string    `json:"videoLink"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CategoryID   string    `json:"categoryId,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

type TrendingResponse struct {
	Meta MetaPayload    `json:"meta"`
	Data []VideoPayload `json:"data"`
}

// TrendingHandler handles trending video requests.
type TrendingHandler struct {
	fetcher usecase.TrendingFetcher
	stats   *metrics.Collector
	logger  *slog.Logger

	defaultCountry string
	defaultLimit   int
}

// NewTrendingHandler creates a TrendingHandler.
func NewTrendingHandler(
	fetcher usecase.TrendingFetcher,
	stats *metrics.Collector,
	defaultCountry string,
	defaultLimit int,
	logger *slog.Logger,
) *TrendingHandler {
	return &TrendingHandler{
		fetcher:        fetcher,
		stats:          stats,
		logger:         logger,
		defaultCountry: defaultCountry,
		defaultLimit:   defaultLimit,
	}
}

// Get handles GET /trending
func (h *TrendingHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.stats.RecordRequest("trending")

	query := r.URL.Query()

	country := strings.ToUpper(query.Get("country"))
	if country == "" {
		country = h.defaultCountry
	}

	limit := h.defaultLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minLimit || n > maxLimit {
			Error(w, http.StatusBadRequest, "invalid_limit", "Limit must be an integer between 1 and 50")
			return
		}
		limit = n
	}

	date := query.Get("date")
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			Error(w, http.StatusBadRequest, "invalid_date", "Date must be in YYYY-MM-DD format")
			return
		}
	}

	result, err := h.fetcher.FetchTrending(r.Context(), usecase.FetchQuery{
		Country:   country,
		Category:  query.Get("category"),
		Keyword:   query.Get("keyword"),
		ChannelID: query.Get("channelId"),
		Date:      date,
		Limit:     limit,
	})
	if err != nil {
		h.logger.Error("failed to fetch trending videos", slog.Any("error", err))
		Error(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	if result.FromCache() {
		h.stats.RecordCacheHit()
	} else {
		h.stats.RecordCacheMiss()
	}

	JSON(w, http.StatusOK, TrendingResponse{
		Meta: MetaPayload{
			Total:     len(result.Videos),
			Limit:     limit,
			Page:      1,
			FetchedAt: time.Now().UTC(),
			FromCache: result.FromCache(),
		},
		Data: toVideoPayloads(result.Videos),
	})
}

func toVideoPayloads(videos []model.Video) []VideoPayload {
	out := make([]VideoPayload, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoPayload{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			ViewCount:    v.ViewCount,
			PublishedAt:  v.PublishedAt,
			ChannelTitle: v.ChannelTitle,
			ChannelID:    v.ChannelID,
			Link:         v.Link,
			ThumbnailURL: v.ThumbnailURL,
			CategoryID:   v.CategoryID,
			Tags:         v.Tags,
		})
	}
	return out
}
