package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"https://text-adventure.winsauce.com/api"`
	StartScreenID  string        `env:"START_SCREEN_ID" envDefault:"0290922a-59ce-458b-8dbc-1c33f646580a"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName   string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string        `env:"LOG_FILE"`  // empty discards console logs
	RedisURL       string        `env:"REDIS_URL"` // empty disables the screen cache
	ScreenCacheTTL time.Duration `env:"SCREEN_CACHE_TTL" envDefault:"1h"`
	Port           string        `env:"PORT" envDefault:"8080"` // dev server only

	LogLevel slog.Level
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.StartScreenID = strings.TrimSpace(cfg.StartScreenID)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	// Cached screens always expire.
	if cfg.ScreenCacheTTL <= 0 {
		return nil, fmt.Errorf("SCREEN_CACHE_TTL must be positive, got %s", cfg.ScreenCacheTTL)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
