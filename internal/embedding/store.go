// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/diversityfilter/internal/metrics"
)

// Store holds the active snapshot and serializes refreshes.
//
// Reads never lock: Snapshot and Lookup are a single atomic pointer load.
type Store struct {
	loader *Loader
	cache  *SnapshotCache
	logger zerolog.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	refreshMu  sync.Mutex
	refreshing atomic.Bool

	statusMu    sync.RWMutex
	lastAttempt time.Time
	lastErr     error
	restored    bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSnapshotCache persists every published snapshot to c.
func WithSnapshotCache(c *SnapshotCache) StoreOption {
	return func(s *Store) { s.cache = c }
}

// WithLogger sets the store logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store. It is not Ready until Refresh or Restore
// publishes a snapshot.
func NewStore(loader *Loader, opts ...StoreOption) *Store {
	s := &Store{
		loader: loader,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshReport describes one successful Refresh.
type RefreshReport struct {
	// Changed is false when the artifact checksum matched the active snapshot.
	Changed  bool
	Snapshot *Snapshot
	Duration time.Duration
}

// Load reads the artifact without publishing it.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	return s.loader.Load(ctx)
}

// Refresh loads the artifact and publishes it. On error the previous
// snapshot stays active. If another refresh is running it returns
// ErrRefreshInProgress immediately.
func (s *Store) Refresh(ctx context.Context) (*RefreshReport, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()
	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	start := time.Now()
	snap, err := s.loader.Load(ctx)
	if err == nil {
		// Cancellation after a complete decode still must not publish.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = &LoadError{Source: snap.Source(), Kind: ReasonCanceled, Err: ctxErr}
		}
	}
	s.recordAttempt(start, err)
	if err != nil {
		return nil, err
	}

	report := &RefreshReport{Duration: time.Since(start)}
	if cur := s.current.Load(); cur != nil && cur.checksum == snap.checksum {
		report.Snapshot = cur
		s.logger.Debug().Str("checksum", cur.checksum).Msg("embedding artifact unchanged")
		return report, nil
	}

	published := s.publish(snap)
	report.Changed = true
	report.Snapshot = published

	s.logger.Info().
		Uint64("version", published.version).
		Int("items", published.Len()).
		Int("dimension", published.dim).
		Str("source", published.source).
		Dur("duration", report.Duration).
		Msg("embedding snapshot published")

	if s.cache != nil {
		// Persisting outlives the refresh ctx so shutdown does not leave a torn write.
		cacheErr := s.cache.Save(context.WithoutCancel(ctx), published)
		metrics.RecordSnapshotCache("save", cacheErr)
		if cacheErr != nil {
			s.logger.Warn().Err(cacheErr).Msg("failed to persist embedding snapshot")
		}
	}
	return report, nil
}

// Restore publishes the cached snapshot if the store is still empty. It
// reports whether a snapshot was restored; a cache miss is not an error.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	snap, err := s.cache.Load(ctx)
	metrics.RecordSnapshotCache("load", ignoreMiss(err))
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.current.Load() != nil {
		return false, nil
	}
	published := s.publish(snap)

	s.statusMu.Lock()
	s.restored = true
	s.statusMu.Unlock()

	s.logger.Info().
		Uint64("version", published.version).
		Int("items", published.Len()).
		Time("loaded_at", published.loadedAt).
		Msg("embedding snapshot restored from cache")
	return true, nil
}

func ignoreMiss(err error) error {
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	return err
}

// publish assigns the next version and swaps the pointer. Caller holds refreshMu.
func (s *Store) publish(snap *Snapshot) *Snapshot {
	published := snap.withVersion(s.version.Add(1))
	s.current.Store(published)
	metrics.UpdateSnapshotGauges(published.Len(), published.dim, published.version)
	return published
}

func (s *Store) recordAttempt(at time.Time, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.lastAttempt = at
	s.lastErr = err
	if err == nil {
		s.restored = false
	}
}

// Snapshot returns the active snapshot, or nil before the first publish.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Lookup returns the vector for id in the active snapshot.
func (s *Store) Lookup(id int64) ([]float64, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.Lookup(id)
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Status is a point-in-time description of the store.
type Status struct {
	Ready             bool
	Version           uint64
	Items             int
	Dimension         int
	Checksum          string
	Source            string
	LoadedAt          time.Time
	LastAttempt       time.Time
	LastError         error
	RefreshInProgress bool
	RestoredFromCache bool
}

// Status returns the current store status.
func (s *Store) Status() Status {
	st := Status{
		Source:            s.loader.Source().Name(),
		RefreshInProgress: s.refreshing.Load(),
	}
	if snap := s.current.Load(); snap != nil {
		st.Ready = true
		st.Version = snap.version
		st.Items = snap.Len()
		st.Dimension = snap.dim
		st.Checksum = snap.checksum
		st.Source = snap.source
		st.LoadedAt = snap.loadedAt
	}

	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	st.LastAttempt = s.lastAttempt
	st.LastError = s.lastErr
	st.RestoredFromCache = s.restored
	return st
}
