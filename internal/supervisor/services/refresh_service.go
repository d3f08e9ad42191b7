// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/diversityfilter/internal/embedding"
	"github.com/tomtom215/diversityfilter/internal/metrics"
)

// Refresh triggers, used as metric labels.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerWatch    = "watch"
	TriggerManual   = "manual"
)

// Refresher rebuilds the embedding snapshot. *embedding.Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*embedding.RefreshReport, error)
}

// RefreshConfig controls the refresh loop.
type RefreshConfig struct {
	Interval  time.Duration
	Timeout   time.Duration // per attempt
	OnStartup bool
}

// RefreshService periodically reloads the embedding artifact. Failures are
// logged and counted; the previous snapshot stays active and the loop keeps
// going. Trigger requests an immediate refresh between ticks.
type RefreshService struct {
	store   Refresher
	cfg     RefreshConfig
	trigger chan string
	logger  zerolog.Logger
}

// NewRefreshService creates the service. Interval defaults to 10s and
// Timeout to the interval.
func NewRefreshService(store Refresher, cfg RefreshConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &RefreshService{
		store:   store,
		cfg:     cfg,
		trigger: make(chan string, 1),
		logger:  logger.With().Str("service", "embedding-refresh").Logger(),
	}
}

// Trigger asks for a refresh as soon as possible. Requests made while one is
// already queued are coalesced; it reports whether this call queued one.
func (s *RefreshService) Trigger(reason string) bool {
	select {
	case s.trigger <- reason:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Bool("on_startup", s.cfg.OnStartup).
		Msg("embedding refresh loop started")

	if s.cfg.OnStartup {
		s.refresh(ctx, TriggerStartup)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx, TriggerInterval)
		case reason := <-s.trigger:
			s.refresh(ctx, reason)
		}
	}
}

// refresh runs one attempt under the per-attempt timeout.
func (s *RefreshService) refresh(ctx context.Context, trigger string) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	report, err := s.store.Refresh(attemptCtx)
	duration := time.Since(start)

	if errors.Is(err, embedding.ErrRefreshInProgress) {
		metrics.RecordRefreshSkipped(trigger)
		s.logger.Debug().Str("trigger", trigger).Msg("refresh already running, skipped")
		return
	}
	metrics.RecordRefresh(trigger, duration, report != nil && report.Changed, err)

	switch {
	case err != nil && ctx.Err() != nil:
		s.logger.Debug().Err(err).Str("trigger", trigger).Msg("refresh interrupted by shutdown")
	case err != nil:
		s.logger.Warn().Err(err).Str("trigger", trigger).Dur("duration", duration).
			Msg("embedding refresh failed, keeping previous snapshot")
	case report.Changed:
		s.logger.Debug().Str("trigger", trigger).Uint64("version", report.Snapshot.Version()).Msg("refresh published")
	}
}

func (s *RefreshService) String() string {
	return "embedding-refresh"
}
