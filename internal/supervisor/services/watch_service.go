// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/diversityfilter/internal/metrics"
)

// Triggerer queues a refresh. *RefreshService satisfies it.
type Triggerer interface {
	Trigger(reason string) bool
}

// WatchConfig controls the artifact watcher.
type WatchConfig struct {
	// Path is the artifact file. Its directory is watched so atomic
	// rename-into-place updates are seen.
	Path string
	// Debounce batches bursts of events from one write.
	Debounce time.Duration
	// MinInterval is the minimum time between two triggered refreshes.
	MinInterval time.Duration
}

// WatchService triggers a refresh when the artifact file changes.
type WatchService struct {
	cfg     WatchConfig
	dir     string
	target  string
	refresh Triggerer
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewWatchService creates a watcher for cfg.Path. Debounce defaults to 500ms
// and MinInterval to 2s.
func NewWatchService(cfg WatchConfig, refresh Triggerer, logger zerolog.Logger) *WatchService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 2 * time.Second
	}
	clean := filepath.Clean(cfg.Path)
	return &WatchService{
		cfg:     cfg,
		dir:     filepath.Dir(clean),
		target:  filepath.Base(clean),
		refresh: refresh,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		logger:  logger.With().Str("service", "embedding-watch").Str("path", clean).Logger(),
	}
}

// Serve implements suture.Service. A watcher that cannot be created is
// returned as an error so the supervisor retries with backoff.
func (s *WatchService) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.Info().Dur("debounce", s.cfg.Debounce).Msg("watching embedding artifact")

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending, throttled := false, false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !s.relevant(event) {
				metrics.RecordWatchEvent("ignored")
				continue
			}
			if pending {
				metrics.RecordWatchEvent("debounced")
				continue
			}
			timer.Reset(s.cfg.Debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			metrics.RecordWatchEvent("error")
			s.logger.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			if !throttled {
				if delay := s.limiter.Reserve().Delay(); delay > 0 {
					metrics.RecordWatchEvent("throttled")
					throttled = true
					timer.Reset(delay)
					continue
				}
			}
			pending, throttled = false, false
			if s.refresh.Trigger(TriggerWatch) {
				metrics.RecordWatchEvent("triggered")
				s.logger.Debug().Msg("artifact changed, refresh queued")
			} else {
				metrics.RecordWatchEvent("coalesced")
			}
		}
	}
}

// relevant keeps writes, creates and renames of the artifact itself. Kubernetes
// volume updates swap the ..data symlink instead of touching the file.
func (s *WatchService) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	return base == s.target || base == "..data"
}

func (s *WatchService) String() string {
	return "embedding-watch"
}
