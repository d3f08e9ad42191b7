// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/tomtom215/diversityfilter/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateEmbeddings(); err != nil {
		return err
	}
	if err := c.validateDiversity(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEmbeddings() error {
	e := &c.Embeddings
	if strings.TrimSpace(e.Path) == "" {
		return fmt.Errorf("EMBEDDINGS_PATH is required")
	}
	switch strings.ToLower(e.Format) {
	case "", "auto", "json", "csv":
	default:
		return fmt.Errorf("EMBEDDINGS_FORMAT must be auto, json or csv (got %q)", e.Format)
	}
	if e.RefreshInterval <= 0 {
		return fmt.Errorf("EMBEDDINGS_REFRESH_INTERVAL must be positive (got %v)", e.RefreshInterval)
	}
	if e.RefreshTimeout <= 0 {
		return fmt.Errorf("EMBEDDINGS_REFRESH_TIMEOUT must be positive (got %v)", e.RefreshTimeout)
	}
	if e.CacheEnabled && strings.TrimSpace(e.CachePath) == "" {
		return fmt.Errorf("EMBEDDINGS_CACHE_PATH is required when EMBEDDINGS_CACHE_ENABLED=true")
	}
	if e.IsRemote() {
		return c.validateS3()
	}
	return nil
}

func (c *Config) validateS3() error {
	u, err := url.Parse(c.Embeddings.Path)
	if err != nil || u.Host == "" || strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("EMBEDDINGS_PATH must look like s3://bucket/key (got %q)", c.Embeddings.Path)
	}
	if c.Embeddings.S3.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required for s3:// embedding paths")
	}
	return nil
}

func (c *Config) validateDiversity() error {
	d := &c.Diversity
	switch d.DefaultMetric {
	case "kde", "knn":
	default:
		return fmt.Errorf("DIVERSITY_DEFAULT_METRIC must be kde or knn (got %q)", d.DefaultMetric)
	}
	if d.DefaultNeighbors < 1 {
		return fmt.Errorf("DIVERSITY_DEFAULT_NEIGHBORS must be at least 1 (got %d)", d.DefaultNeighbors)
	}
	if !(d.KDEBandwidth > 0) || math.IsInf(d.KDEBandwidth, 0) {
		return fmt.Errorf("DIVERSITY_KDE_BANDWIDTH must be positive (got %v)", d.KDEBandwidth)
	}
	if d.MaxItems < 1 {
		return fmt.Errorf("DIVERSITY_MAX_ITEMS must be at least 1 (got %d)", d.MaxItems)
	}
	if d.ResultCacheSize < 0 {
		return fmt.Errorf("DIVERSITY_RESULT_CACHE_SIZE must not be negative (got %d)", d.ResultCacheSize)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 (got %d)", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive (got %v)", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
}
