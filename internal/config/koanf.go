// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/diversityfilter/config.yaml",
	"/etc/diversityfilter/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. Defaults are
// loaded first and then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Path:             "",
			Format:           "auto",
			RefreshInterval:  10 * time.Second,
			RefreshTimeout:   2 * time.Minute,
			RefreshOnStartup: true,
			WatchEnabled:     true,
			WatchDebounce:    500 * time.Millisecond,
			CacheEnabled:     false,
			CachePath:        "/data/diversityfilter/snapshot",
			S3: S3Config{
				Endpoint: "",
				Region:   "",
				UseSSL:   true,
			},
		},
		Diversity: DiversityConfig{
			DefaultMetric:    "kde",
			DefaultNeighbors: 5,
			KDEBandwidth:     1.0,
			MaxItems:         1000,
			ResultCacheSize:  10000,
			ResultCacheTTL:   5 * time.Minute,
		},
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SwaggerEnabled:  true,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     600,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, the optional YAML file and
// the environment, in that order, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// EMBEDDINGS_PATH -> embeddings.path, HTTP_PORT -> server.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processLegacyDurations(k); err != nil {
		return nil, fmt.Errorf("failed to process legacy durations: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for the
// known slice paths. Values that are already slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// durationConfigPaths accept a bare integer, read as whole seconds. The
// original service took update_interval=10 meaning ten seconds.
var durationConfigPaths = []string{
	"embeddings.refresh_interval",
}

func processLegacyDurations(k *koanf.Koanf) error {
	for _, path := range durationConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimSpace(strVal))
		if err != nil {
			continue // a proper duration string such as "30s"
		}
		if err := k.Set(path, time.Duration(secs)*time.Second); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Embedding artifact
		"embeddings_path":               "embeddings.path",
		"embeddings_format":             "embeddings.format",
		"embeddings_refresh_interval":   "embeddings.refresh_interval",
		"update_interval":               "embeddings.refresh_interval",
		"embeddings_refresh_timeout":    "embeddings.refresh_timeout",
		"embeddings_refresh_on_startup": "embeddings.refresh_on_startup",
		"embeddings_watch_enabled":      "embeddings.watch_enabled",
		"embeddings_watch_debounce":     "embeddings.watch_debounce",
		"embeddings_cache_enabled":      "embeddings.cache_enabled",
		"embeddings_cache_path":         "embeddings.cache_path",

		// Object storage
		"s3_endpoint":   "embeddings.s3.endpoint",
		"s3_access_key": "embeddings.s3.access_key",
		"s3_secret_key": "embeddings.s3.secret_key",
		"s3_region":     "embeddings.s3.region",
		"s3_use_ssl":    "embeddings.s3.use_ssl",

		// Evaluation
		"diversity_default_metric":    "diversity.default_metric",
		"diversity_default_neighbors": "diversity.default_neighbors",
		"diversity_kde_bandwidth":     "diversity.kde_bandwidth",
		"diversity_max_items":         "diversity.max_items",
		"diversity_result_cache_size": "diversity.result_cache_size",
		"diversity_result_cache_ttl":  "diversity.result_cache_ttl",

		// Server
		"http_port":             "server.port",
		"http_host":             "server.host",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"swagger_enabled":       "server.swagger_enabled",

		// Security
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
