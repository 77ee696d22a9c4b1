// Package config loads service settings from environment variables, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Upstream BMD portal settings.
	BMDBaseURL   string        `envconfig:"BMD_BASE_URL" default:"https://www.bamis.gov.bd"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchRPS     float64       `envconfig:"FETCH_RPS" default:"2"`
	FetchBurst   int           `envconfig:"FETCH_BURST" default:"4"`

	// Horizon policy: default when the query carries no day-count signal,
	// max is what the upstream tables offer.
	DefaultHorizon int `envconfig:"DEFAULT_HORIZON" default:"3"`
	MaxHorizon     int `envconfig:"MAX_HORIZON" default:"7"`

	// Mapbox geocoding enrichment (optional, enabled by a token).
	MapboxToken     string        `envconfig:"MAPBOX_TOKEN"`
	MapboxTimeout   time.Duration `envconfig:"MAPBOX_TIMEOUT" default:"5s"`
	MapboxCacheSize int           `envconfig:"MAPBOX_CACHE_SIZE" default:"1000"`

	// Gemini explanation polishing (optional, enabled by an API key).
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiTimeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"10s"`

	// Kafka resolved-query events (optional, enabled by brokers).
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"resolved-forecast-queries"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.FetchRPS <= 0 || cfg.FetchBurst < 1 {
		return nil, errors.New("FETCH_RPS and FETCH_BURST must be positive")
	}
	if cfg.MaxHorizon < 1 {
		return nil, errors.New("MAX_HORIZON must be at least 1")
	}
	if cfg.DefaultHorizon < 1 || cfg.DefaultHorizon > cfg.MaxHorizon {
		return nil, fmt.Errorf("DEFAULT_HORIZON must be in [1,%d]", cfg.MaxHorizon)
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return &cfg, nil
}

// MapboxEnabled reports whether geocoding enrichment is configured.
func (c *Config) MapboxEnabled() bool { return c.MapboxToken != "" }

// GeminiEnabled reports whether explanation polishing is configured.
func (c *Config) GeminiEnabled() bool { return c.GeminiAPIKey != "" }

// KafkaEnabled reports whether resolved-query publishing is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }
