// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the listing service.
type Config struct {
	Port                 string
	DatabaseURL          string
	RedisURL             string
	RateLimitPerWindow   int64
	RateLimitWindow      time.Duration
	StatsRefreshInterval time.Duration
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("LISTINGS_PORT")
	if port == "" {
		port = "8083"
	}

	limit, err := intEnv("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}

	statsMinutes, err := intEnv("STATS_REFRESH_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		RateLimitPerWindow:   int64(limit),
		RateLimitWindow:      time.Minute,
		StatsRefreshInterval: time.Duration(statsMinutes) * time.Minute,
	}, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}
