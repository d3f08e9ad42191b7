// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Embeddings.Path = "/data/embeddings.json"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with path", func(*Config) {}, ""},
		{"missing path", func(c *Config) { c.Embeddings.Path = "  " }, "EMBEDDINGS_PATH"},
		{"bad format", func(c *Config) { c.Embeddings.Format = "npy" }, "EMBEDDINGS_FORMAT"},
		{"zero interval", func(c *Config) { c.Embeddings.RefreshInterval = 0 }, "REFRESH_INTERVAL"},
		{"cache without path", func(c *Config) {
			c.Embeddings.CacheEnabled = true
			c.Embeddings.CachePath = ""
		}, "CACHE_PATH"},
		{"s3 without endpoint", func(c *Config) { c.Embeddings.Path = "s3://bucket/key.json" }, "S3_ENDPOINT"},
		{"s3 without key", func(c *Config) {
			c.Embeddings.Path = "s3://bucket"
			c.Embeddings.S3.Endpoint = "minio:9000"
		}, "s3://bucket/key"},
		{"s3 ok", func(c *Config) {
			c.Embeddings.Path = "s3://bucket/items.json"
			c.Embeddings.S3.Endpoint = "minio:9000"
		}, ""},
		{"unknown metric", func(c *Config) { c.Diversity.DefaultMetric = "cosine" }, "DEFAULT_METRIC"},
		{"zero neighbors", func(c *Config) { c.Diversity.DefaultNeighbors = 0 }, "DEFAULT_NEIGHBORS"},
		{"zero bandwidth", func(c *Config) { c.Diversity.KDEBandwidth = 0 }, "KDE_BANDWIDTH"},
		{"zero max items", func(c *Config) { c.Diversity.MaxItems = 0 }, "MAX_ITEMS"},
		{"negative cache size", func(c *Config) { c.Diversity.ResultCacheSize = -1 }, "RESULT_CACHE_SIZE"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitWindow = 0
		}, ""},
		{"bad window", func(c *Config) { c.Security.RateLimitWindow = -time.Second }, "RATE_LIMIT_WINDOW"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
