package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	YouTube   YouTubeConfig
	Redis     RedisConfig
	Fetch     FetchConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type YouTubeConfig struct {
	APIKey  string        `envconfig:"YOUTUBE_API_KEY" required:"true"`
	BaseURL string        `envconfig:"YOUTUBE_BASE_URL" default:"https://www.googleapis.com/youtube/v3"`
	Timeout time.Duration `envconfig:"YOUTUBE_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	URL     string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Enabled bool   `envconfig:"REDIS_ENABLED" default:"true"`
}

type FetchConfig struct {
	DefaultCountry    string        `envconfig:"DEFAULT_COUNTRY" default:"ID"`
	DefaultCategories string        `envconfig:"DEFAULT_CATEGORIES" default:"music,news,tech,entertainment,gaming"`
	DefaultLimit      int           `envconfig:"TREND_LIMIT" default:"10"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"24h"`
}

// Categories parses the configured CSV category list.
func (c FetchConfig) Categories() []string {
	var out []string
	for _, cat := range strings.Split(c.DefaultCategories, ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			out = append(out, cat)
		}
	}
	return out
}

type SchedulerConfig struct {
	CronSpec string `envconfig:"SCHEDULER_CRON" default:"0 0 * * *"`
	Enabled  bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
