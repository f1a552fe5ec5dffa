package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/trendfeed/internal/api/handler"
	"github.com/hszk-dev/trendfeed/internal/api/middleware"
	"github.com/hszk-dev/trendfeed/internal/config"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/cache"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/metrics"
	"github.com/hszk-dev/trendfeed/internal/infrastructure/youtube"
	"github.com/hszk-dev/trendfeed/internal/scheduler"
	"github.com/hszk-dev/trendfeed/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ytClient, err := youtube.NewClient(youtube.Config{
		APIKey:  cfg.YouTube.APIKey,
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.YouTube.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create youtube client: %w", err)
	}

	trendingCache, closeCache, err := setupCache(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	stats := metrics.NewCollector()

	fetcher := usecase.NewFetchService(ytClient, trendingCache, usecase.FetchServiceConfig{
		CacheTTL: cfg.Fetch.CacheTTL,
	}, logger)

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(fetcher, scheduler.Config{
			CronSpec:   cfg.Scheduler.CronSpec,
			Country:    cfg.Fetch.DefaultCountry,
			Categories: cfg.Fetch.Categories(),
			Limit:      cfg.Fetch.DefaultLimit,
		}, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	} else {
		logger.Info("scheduler is disabled")
	}

	r := setupRouter(logger, fetcher, trendingCache, ytClient, stats, cfg.Fetch)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// setupCache connects to Redis when enabled. An unreachable store does
// not abort startup: cache errors degrade to no-cache behavior at
// runtime, so Redis may come back without a restart.
func setupCache(cfg config.RedisConfig, logger *slog.Logger) (cache.TrendingCache, func(), error) {
	if !cfg.Enabled {
		logger.Warn("redis is disabled, caching is off")
		return cache.NewNoopTrendingCache(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis is unreachable, continuing without cache", slog.Any("error", err))
	} else {
		logger.Info("redis connected", slog.String("url", cfg.URL))
	}

	return cache.NewRedisTrendingCache(client), func() { client.Close() }, nil
}

func setupRouter(
	logger *slog.Logger,
	fetcher usecase.TrendingFetcher,
	trendingCache cache.TrendingCache,
	ytClient *youtube.Client,
	stats *metrics.Collector,
	fetchCfg config.FetchConfig,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	trendingHandler := handler.NewTrendingHandler(
		fetcher, stats, fetchCfg.DefaultCountry, fetchCfg.DefaultLimit, logger,
	)
	healthHandler := handler.NewHealthHandler(trendingCache, ytClient, stats)

	r.Get("/trending", trendingHandler.Get)
	r.Get("/health", healthHandler.Health)
	r.Get("/stats", healthHandler.Stats)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
