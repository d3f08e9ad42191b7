// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

// Package config loads diversityfilter configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/diversityfilter/config.yaml)
//  3. Environment variables, mapped explicitly in envTransformFunc
//
// The legacy variables of the original deployment are still honoured:
// embeddings_path maps to embeddings.path and update_interval (bare seconds)
// maps to embeddings.refresh_interval.
package config

import (
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Diversity  DiversityConfig  `koanf:"diversity"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// EmbeddingsConfig controls where the embedding artifact comes from and how
// often the in-memory snapshot is rebuilt.
//
// Environment Variables:
//   - EMBEDDINGS_PATH: local file path or s3://bucket/key (required)
//   - EMBEDDINGS_FORMAT: auto, json or csv (default: auto)
//   - EMBEDDINGS_REFRESH_INTERVAL: Go duration (default: 10s)
//   - UPDATE_INTERVAL: legacy refresh interval in whole seconds
//   - EMBEDDINGS_WATCH_ENABLED: reload as soon as the artifact file changes (default: true)
//   - EMBEDDINGS_CACHE_ENABLED: persist the last good snapshot in BadgerDB (default: false)
type EmbeddingsConfig struct {
	Path             string        `koanf:"path"`
	Format           string        `koanf:"format"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	RefreshTimeout   time.Duration `koanf:"refresh_timeout"`
	RefreshOnStartup bool          `koanf:"refresh_on_startup"`
	WatchEnabled     bool          `koanf:"watch_enabled"`
	WatchDebounce    time.Duration `koanf:"watch_debounce"`
	CacheEnabled     bool          `koanf:"cache_enabled"`
	CachePath        string        `koanf:"cache_path"`
	S3               S3Config      `koanf:"s3"`
}

// IsRemote reports whether Path points at object storage.
func (e *EmbeddingsConfig) IsRemote() bool {
	return strings.HasPrefix(e.Path, "s3://")
}

// S3Config holds MinIO / S3 connection settings, used only when
// EmbeddingsConfig.Path starts with s3://.
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// DiversityConfig holds the evaluation parameters. The rejection threshold is
// not configurable; it is diversity.DefaultThreshold.
type DiversityConfig struct {
	DefaultMetric    string        `koanf:"default_metric"`
	DefaultNeighbors int           `koanf:"default_neighbors"`
	KDEBandwidth     float64       `koanf:"kde_bandwidth"`
	MaxItems         int           `koanf:"max_items"`
	ResultCacheSize  int           `koanf:"result_cache_size"` // 0 disables the result cache
	ResultCacheTTL   time.Duration `koanf:"result_cache_ttl"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	SwaggerEnabled  bool          `koanf:"swagger_enabled"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config for the koanf layer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
