// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/diversityfilter/internal/config"
	"github.com/tomtom215/diversityfilter/internal/diversity"
	"github.com/tomtom215/diversityfilter/internal/embedding"
	"github.com/tomtom215/diversityfilter/internal/filter"
	"github.com/tomtom215/diversityfilter/internal/logging"
)

// embeddingComponents holds the store and the optional warm-start cache.
type embeddingComponents struct {
	store *embedding.Store
	cache *embedding.SnapshotCache
}

// Close releases the snapshot cache.
func (c *embeddingComponents) Close() {
	if c.cache == nil {
		return
	}
	if err := c.cache.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing snapshot cache")
	}
}

// initEmbeddings builds the source, loader and store, and restores the last
// good snapshot when the cache is enabled. A failed restore is not fatal; the
// refresh service loads the artifact shortly after.
func initEmbeddings(ctx context.Context, cfg *config.Config) (*embeddingComponents, error) {
	src, err := embedding.NewSource(&cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("create embedding source: %w", err)
	}
	format, err := embedding.ParseFormat(cfg.Embeddings.Format)
	if err != nil {
		return nil, fmt.Errorf("embedding format: %w", err)
	}

	c := &embeddingComponents{}
	opts := []embedding.StoreOption{embedding.WithLogger(logging.WithComponent("embedding"))}

	if cfg.Embeddings.CacheEnabled {
		cache, err := embedding.OpenSnapshotCache(cfg.Embeddings.CachePath)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.Embeddings.CachePath).Msg("Snapshot cache unavailable, continuing without warm start")
		} else {
			c.cache = cache
			opts = append(opts, embedding.WithSnapshotCache(cache))
		}
	}

	c.store = embedding.NewStore(embedding.NewLoader(src, format), opts...)

	restored, err := c.store.Restore(ctx)
	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("Failed to restore cached snapshot")
	case restored:
		logging.Info().Msg("Serving cached snapshot until the first refresh completes")
	}

	logging.Info().Str("source", src.Name()).Str("format", string(format)).Msg("Embedding store initialized")
	return c, nil
}

// initFilter maps the diversity section of the config onto a filter.
func initFilter(cfg *config.Config, store filter.SnapshotProvider) (*filter.Filter, error) {
	metric, err := diversity.ParseMetric(cfg.Diversity.DefaultMetric)
	if err != nil {
		return nil, fmt.Errorf("diversity.default_metric: %w", err)
	}
	return filter.New(store, filter.Config{
		Threshold:        diversity.DefaultThreshold,
		Bandwidth:        cfg.Diversity.KDEBandwidth,
		DefaultMetric:    metric,
		DefaultNeighbors: cfg.Diversity.DefaultNeighbors,
		MaxItems:         cfg.Diversity.MaxItems,
		CacheSize:        cfg.Diversity.ResultCacheSize,
		CacheTTL:         cfg.Diversity.ResultCacheTTL,
	}, logging.WithComponent("filter")), nil
}
