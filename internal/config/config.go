// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// Config is shared by every command. Values come from the environment, optionally
// seeded from a .env file in the working directory.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`
	LogQueries     bool   `env:"DB_LOG_QUERIES" env-default:"false"`
	RedisAddr      string `env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Port           string `env:"PORT" env-default:"8080"`
	BaseURL        string `env:"BASE_URL" env-default:"http://localhost:8080"`
	IngestSchedule string `env:"INGEST_SCHEDULE" env-default:"@daily"`
	Source         SourceConfig
}

// SourceConfig describes the external video source and how hard we may hit it.
type SourceConfig struct {
	BaseURL       string  `env:"SOURCE_BASE_URL" env-default:"https://www.youtube.com"`
	Channel       string  `env:"SOURCE_CHANNEL" env-default:"@olgaenvivo_"`
	RatePerSecond float64 `env:"SOURCE_RATE_PER_SECOND" env-default:"1"`
	Burst         int     `env:"SOURCE_BURST" env-default:"1"`
}

// Limiter builds the limiter shared by every request to the source. A zero or
// negative rate disables pacing.
func (s SourceConfig) Limiter() *rate.Limiter {
	if s.RatePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.RatePerSecond), max(s.Burst, 1))
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return &cfg, nil
}
