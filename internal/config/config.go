// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package config loads engine configuration with Koanf v2 layering:
// built-in defaults, then an optional YAML file, then environment
// variables. Precedence: ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the engine.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Events     EventsConfig     `koanf:"events"`
	Experiment ExperimentConfig `koanf:"experiment"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig holds the Badger store settings. When Path is empty the
// engine runs fully in memory.
type StorageConfig struct {
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// CatalogConfig selects the content catalog source. An empty URL means the
// in-memory snapshot catalog, seeded by the operator or tests.
type CatalogConfig struct {
	URL              string        `koanf:"url"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	RequestTimeout   time.Duration `koanf:"request_timeout"`
	PullsPerMinute   int           `koanf:"pulls_per_minute"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	DefaultLimit int           `koanf:"default_limit"`
	MaxLimit     int           `koanf:"max_limit"`
	FeedLimit    int           `koanf:"feed_limit"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	CacheMax     int           `koanf:"cache_max_entries"`
}

// EventsConfig holds interaction bus settings.
type EventsConfig struct {
	OutputBuffer         int64         `koanf:"output_buffer"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	NATSEnabled bool   `koanf:"nats_enabled"`
	NATSURL     string `koanf:"nats_url"`
	NATSSubject string `koanf:"nats_subject"`
}

// ExperimentConfig holds A/B experiment settings.
type ExperimentConfig struct {
	Enabled bool `koanf:"enabled"`
}

// SecurityConfig holds CORS and rate-limit settings.
type SecurityConfig struct {
	CORSOrigins       []string `koanf:"cors_origins"`
	RateLimitDisabled bool     `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Path:       "/data/pulse",
			GCInterval: 10 * time.Minute,
		},
		Catalog: CatalogConfig{
			URL:              "",
			RefreshInterval:  5 * time.Minute,
			RequestTimeout:   15 * time.Second,
			PullsPerMinute:   12,
			FailureThreshold: 5,
		},
		Recommend: RecommendConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
			FeedLimit:    20,
			CacheEnabled: true,
			CacheTTL:     time.Minute,
			CacheMax:     10000,
		},
		Events: EventsConfig{
			OutputBuffer:         1024,
			RetryMaxRetries:      5,
			RetryInitialInterval: time.Second,
			RetryMaxInterval:     time.Minute,
			RetryMultiplier:      2.0,
			CloseTimeout:         30 * time.Second,

			NATSEnabled: false,
			NATSURL:     "nats://127.0.0.1:4222",
			NATSSubject: "pulse.interactions",
		},
		Experiment: ExperimentConfig{
			Enabled: true,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("recommend.default_limit must be positive, got %d", c.Recommend.DefaultLimit)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit must be >= default_limit, got %d < %d",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if c.Recommend.FeedLimit < 1 {
		return fmt.Errorf("recommend.feed_limit must be positive, got %d", c.Recommend.FeedLimit)
	}
	if c.Events.OutputBuffer < 1 {
		return fmt.Errorf("events.output_buffer must be positive, got %d", c.Events.OutputBuffer)
	}
	if c.Events.NATSEnabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events.nats_url is required when events.nats_enabled is true")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
