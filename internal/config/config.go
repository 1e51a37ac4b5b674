package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	RedisURL    string // пустой URL выключает кэш лидерборда
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	LeaderboardCacheTTL     time.Duration
	LeaderboardWarmInterval time.Duration
	GradingModel            string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Hong_Kong")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	ttl, err := parseDuration("LEADERBOARD_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	warm, err := parseDuration("LEADERBOARD_WARM_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:             mustEnv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		Location:                loc,
		HTTPAddr:                getenv("HTTP_ADDR", ":8080"),
		LogLevel:                getenv("LOG_LEVEL", "info"),
		Env:                     getenv("ENV", "dev"),
		SentryDSN:               os.Getenv("SENTRY_DSN"),
		LeaderboardCacheTTL:     ttl,
		LeaderboardWarmInterval: warm,
		GradingModel:            getenv("GRADING_MODEL", "gemma"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseDuration(k, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(k, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", k, d)
	}
	return d, nil
}
