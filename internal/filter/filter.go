// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

// Package filter answers group diversity requests.
//
// A request names item ids, a metric and K. The filter resolves the ids
// against exactly one embedding snapshot, skips ids that have no embedding,
// and evaluates the rest. When nothing resolves the outcome is
// StatusNoValidEmbeddings, which callers must report separately from a
// computed score.
//
// Results are memoized in a bounded LRU keyed by the snapshot checksum, so a
// refresh that changes the artifact naturally invalidates old entries.
package filter

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/diversityfilter/internal/cache"
	"github.com/tomtom215/diversityfilter/internal/diversity"
	"github.com/tomtom215/diversityfilter/internal/embedding"
	"github.com/tomtom215/diversityfilter/internal/logging"
	"github.com/tomtom215/diversityfilter/internal/metrics"
)

// Status distinguishes an evaluated group from one with no usable embeddings.
type Status int

const (
	StatusEvaluated Status = iota + 1
	StatusNoValidEmbeddings
)

func (s Status) String() string {
	switch s {
	case StatusEvaluated:
		return "evaluated"
	case StatusNoValidEmbeddings:
		return "no_valid_embeddings"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// SnapshotProvider returns the active snapshot, or nil before the first load.
// *embedding.Store satisfies it.
type SnapshotProvider interface {
	Snapshot() *embedding.Snapshot
}

// Request is one diversity question. RawItemIDs (comma separated) takes
// precedence over ItemIDs. Empty Metric and zero NumNeighbors fall back to
// the configured defaults.
type Request struct {
	RawItemIDs   string
	ItemIDs      []int64
	Metric       string
	NumNeighbors int
}

// Outcome is the answer to a Request.
type Outcome struct {
	Status          Status
	Result          diversity.Result
	Metric          diversity.Metric
	NumNeighbors    int
	Threshold       float64
	Requested       int
	Resolved        int
	Missing         []int64
	SnapshotVersion uint64
	Cached          bool
}

// Config holds the deployment parameters of a Filter.
type Config struct {
	Threshold        float64
	Bandwidth        float64
	DefaultMetric    diversity.Metric
	DefaultNeighbors int
	MaxItems         int
	CacheSize        int // 0 disables result caching
	CacheTTL         time.Duration
}

// Filter evaluates requests against the active snapshot.
type Filter struct {
	store     SnapshotProvider
	evaluator *diversity.Evaluator
	cfg       Config
	results   *cache.LRU[string, diversity.Result]
	logger    zerolog.Logger
}

// New creates a Filter reading from store.
func New(store SnapshotProvider, cfg Config, logger zerolog.Logger) *Filter {
	if !cfg.DefaultMetric.Valid() {
		cfg.DefaultMetric = diversity.MetricKDE
	}
	if cfg.DefaultNeighbors < 1 {
		cfg.DefaultNeighbors = 5
	}
	f := &Filter{
		store:     store,
		evaluator: diversity.NewEvaluator(cfg.Threshold, cfg.Bandwidth),
		cfg:       cfg,
		logger:    logger.With().Str("component", "filter").Logger(),
	}
	if cfg.CacheSize > 0 {
		f.results = cache.NewLRU[string, diversity.Result](cfg.CacheSize, cfg.CacheTTL)
	}
	return f
}

// Threshold returns the rejection threshold.
func (f *Filter) Threshold() float64 { return f.cfg.Threshold }

// Handle parses, resolves and evaluates req. Argument errors are returned
// before readiness is checked, so a malformed request fails the same way
// whether or not embeddings are loaded.
func (f *Filter) Handle(ctx context.Context, req Request) (*Outcome, error) {
	ids := req.ItemIDs
	if req.RawItemIDs != "" || ids == nil {
		parsed, err := ParseItemIDs(req.RawItemIDs)
		if err != nil {
			return nil, err
		}
		ids = parsed
	}
	if f.cfg.MaxItems > 0 && len(ids) > f.cfg.MaxItems {
		return nil, &TooManyItemsError{Count: len(ids), Max: f.cfg.MaxItems}
	}

	metric := f.cfg.DefaultMetric
	if req.Metric != "" {
		m, err := diversity.ParseMetric(req.Metric)
		if err != nil {
			return nil, err
		}
		metric = m
	}
	k := req.NumNeighbors
	if k == 0 {
		k = f.cfg.DefaultNeighbors
	}
	if metric == diversity.MetricKNN && k < 1 {
		return nil, diversity.ErrInvalidNeighbors
	}

	snap := f.store.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}

	out := &Outcome{
		Metric:          metric,
		NumNeighbors:    k,
		Threshold:       f.cfg.Threshold,
		Requested:       len(ids),
		SnapshotVersion: snap.Version(),
	}

	vectors, resolved, missing := snap.Resolve(ids)
	out.Missing = missing
	out.Resolved = len(resolved)

	if len(out.Missing) > 0 {
		logging.Ctx(ctx).Debug().
			Int("missing", len(out.Missing)).
			Int("requested", out.Requested).
			Interface("item_ids", truncateIDs(out.Missing, 20)).
			Msg("skipping items without embeddings")
	}

	if len(vectors) == 0 {
		out.Status = StatusNoValidEmbeddings
		out.Result = diversity.Result{Reject: true}
		metrics.RecordNoValidEmbeddings(metric.String(), len(out.Missing))
		return out, nil
	}
	metrics.RecordMissingItems(len(out.Missing))

	out.Status = StatusEvaluated
	key := f.cacheKey(snap, metric, k, resolved)
	if f.results != nil {
		res, hit := f.results.Get(key)
		metrics.RecordResultCache(hit, f.results.Len())
		if hit {
			out.Result = res
			out.Cached = true
			return out, nil
		}
	}

	start := time.Now()
	res, err := f.evaluator.Evaluate(vectors, metric, k)
	if err != nil {
		return nil, err
	}
	metrics.RecordDiversityEvaluation(metric.String(), len(vectors), res.Diversity, res.Reject, time.Since(start))

	if f.results != nil {
		f.results.Set(key, res)
	}
	out.Result = res
	return out, nil
}

// cacheKey identifies a result. Evaluation is order independent, so the
// resolved ids are sorted. K only matters for knn.
func (f *Filter) cacheKey(snap *embedding.Snapshot, metric diversity.Metric, k int, resolved []int64) string {
	if metric != diversity.MetricKNN {
		k = 0
	}
	sorted := slices.Clone(resolved)
	slices.Sort(sorted)

	var b strings.Builder
	b.Grow(len(snap.Checksum()) + 16 + len(sorted)*8)
	b.WriteString(snap.Checksum())
	b.WriteByte('|')
	b.WriteString(metric.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(k))
	b.WriteByte('|')
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// CacheStats returns result cache counters. The zero value is returned when
// caching is disabled.
func (f *Filter) CacheStats() cache.Stats {
	if f.results == nil {
		return cache.Stats{}
	}
	return f.results.Stats()
}

func truncateIDs(ids []int64, limit int) []int64 {
	if len(ids) <= limit {
		return ids
	}
	return ids[:limit]
}
