// Package scheduler runs the periodic trending refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/hszk-dev/trendfeed/internal/infrastructure/metrics"
	"github.com/hszk-dev/trendfeed/internal/usecase"
)

// Config holds configuration for the refresh scheduler.
type Config struct {
	// CronSpec is a standard 5-field cron expression.
	CronSpec string
	// Country is the region refreshed on schedule.
	Country string
	// Categories is the ordered category list refreshed each run.
	Categories []string
	// Limit is the per-category fetch size.
	Limit int
}

// RefreshScheduler periodically re-fetches trending videos for a fixed
// category list, bypassing the cache so entries are rebuilt before they
// expire.
type RefreshScheduler struct {
	fetcher usecase.TrendingFetcher
	logger  *slog.Logger
	cfg     Config
	cron    *cron.Cron
}

// New creates a refresh scheduler. Start must be called to arm it.
func New(fetcher usecase.TrendingFetcher, cfg Config, logger *slog.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		fetcher: fetcher,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start arms the cron schedule. Returns an error if the cron expression
// is invalid.
func (s *RefreshScheduler) Start() error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cfg.CronSpec, err)
	}

	s.cron.Start()
	s.logger.Info("refresh scheduler started",
		slog.String("cron", s.cfg.CronSpec),
		slog.Any("categories", s.cfg.Categories),
	)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RefreshScheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped")
}

// RunOnce refreshes every configured category sequentially. A failure on
// one category is logged and does not abort the rest of the batch.
func (s *RefreshScheduler) RunOnce(ctx context.Context) {
	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))

	logger.Info("starting scheduled refresh",
		slog.String("country", s.cfg.Country),
		slog.Any("categories", s.cfg.Categories),
	)

	for _, category := range s.cfg.Categories {
		_, err := s.fetcher.FetchTrending(ctx, usecase.FetchQuery{
			Country:      s.cfg.Country,
			Category:     category,
			Limit:        s.cfg.Limit,
			ForceRefresh: true,
		})
		if err != nil {
			metrics.ScheduledRefreshTotal.WithLabelValues(metrics.StatusError).Inc()
			logger.Error("scheduled refresh failed for category",
				slog.String("category", category),
				slog.Any("error", err),
			)
			continue
		}

		metrics.ScheduledRefreshTotal.WithLabelValues(metrics.StatusSuccess).Inc()
		logger.Info("refreshed trending videos", slog.String("category", category))
	}

	logger.Info("scheduled refresh completed")
}
