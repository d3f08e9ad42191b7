// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package api

import (
	"context"
	"time"

	"github.com/tomtom215/diversityfilter/internal/embedding"
	"github.com/tomtom215/diversityfilter/internal/filter"
)

// EmbeddingStore is the part of *embedding.Store the handlers use.
type EmbeddingStore interface {
	Status() embedding.Status
	Ready() bool
	Refresh(ctx context.Context) (*embedding.RefreshReport, error)
}

// DiversityFilter evaluates one group request.
type DiversityFilter interface {
	Handle(ctx context.Context, req filter.Request) (*filter.Outcome, error)
}

// HandlerConfig holds request limits and build info for the handlers.
type HandlerConfig struct {
	// MaxBodyBytes bounds POST /diversity/ bodies.
	MaxBodyBytes int64
	// RefreshTimeout bounds a manual refresh started from the admin endpoint.
	RefreshTimeout time.Duration
	// RetryAfter is advertised with EMBEDDINGS_NOT_READY responses.
	RetryAfter time.Duration
	Version    string
}

// DefaultHandlerConfig returns the limits used when a field is left zero.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		MaxBodyBytes:   1 << 20,
		RefreshTimeout: 30 * time.Second,
		RetryAfter:     5 * time.Second,
		Version:        "dev",
	}
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor
//   - handlers_helpers.go: response and request helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_diversity.go: GET and POST /diversity/
//   - handlers_embeddings.go: snapshot status and manual refresh
type Handler struct {
	store     EmbeddingStore
	filter    DiversityFilter
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates the API handler. Zero fields in cfg take the defaults.
//
// Example:
//
//	handler := api.NewHandler(store, filter.New(store, filterCfg, logger), api.HandlerConfig{Version: version})
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security), true)
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(store EmbeddingStore, f DiversityFilter, cfg HandlerConfig) *Handler {
	def := DefaultHandlerConfig()
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = def.RefreshTimeout
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = def.RetryAfter
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	return &Handler{
		store:     store,
		filter:    f,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// uptime is reported rounded to the second.
func (h *Handler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
