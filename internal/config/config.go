// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/auth/session"

	"github.com/joho/godotenv"
)

var ErrWeakAuthSecret = fmt.Errorf("config: AUTH_SECRET must be at least %d bytes", session.MinSecretLen)

type Config struct {
	ServiceName string
	Env         string
	Addr        string

	// DatabaseURL empty means the in-memory store, for local development.
	DatabaseURL string
	// RedisURL empty means the in-memory rate limiter.
	RedisURL string

	AuthSecret string

	RateLimitWindow     time.Duration
	RateLimitMax        int
	RateLimitFailClosed bool
}

// Load reads the environment, after merging in .env when one exists. Missing
// optional values fall back to defaults; a weak AUTH_SECRET is an error.
func Load() (*Config, error) {
	// A missing .env file is fine; anything else is a real fault.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "habib-furniture"),
		Env:         getEnv("ENV", "development"),
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AuthSecret:  os.Getenv("AUTH_SECRET"),
	}

	if len(cfg.AuthSecret) < session.MinSecretLen {
		return nil, ErrWeakAuthSecret
	}

	windowSeconds, err := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second

	if cfg.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitFailClosed, err = getEnvBool("RATE_LIMIT_FAIL_CLOSED", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean: %w", key, err)
	}
	return b, nil
}
