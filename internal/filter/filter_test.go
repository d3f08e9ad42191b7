// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package filter

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/diversityfilter/internal/diversity"
	"github.com/tomtom215/diversityfilter/internal/embedding"
)

// staticProvider hands out a fixed snapshot that tests may swap.
type staticProvider struct {
	mu   sync.Mutex
	snap *embedding.Snapshot
}

func (p *staticProvider) Snapshot() *embedding.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *staticProvider) set(s *embedding.Snapshot) {
	p.mu.Lock()
	p.snap = s
	p.mu.Unlock()
}

func mustSnapshot(t *testing.T, vectors map[int64][]float64, checksum string) *embedding.Snapshot {
	t.Helper()
	snap, err := embedding.NewSnapshot(vectors, "test.json", checksum, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

// abcSnapshot holds A=(0,0), B=(0,1), C=(10,10) plus a duplicate cluster.
func abcSnapshot(t *testing.T) *embedding.Snapshot {
	return mustSnapshot(t, map[int64][]float64{
		1: {0, 0},
		2: {0, 1},
		3: {10, 10},
		7: {4, 4},
		8: {4, 4},
		9: {4, 4},
	}, "abc")
}

func newTestFilter(t *testing.T, p SnapshotProvider, mutate func(*Config)) *Filter {
	t.Helper()
	cfg := Config{
		Threshold:        0.5,
		Bandwidth:        1,
		DefaultMetric:    diversity.MetricKDE,
		DefaultNeighbors: 5,
		MaxItems:         100,
		CacheSize:        16,
		CacheTTL:         time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(p, cfg, zerolog.Nop())
}

func TestHandle_KNNScenario(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, nil)

	out, err := f.Handle(context.Background(), Request{RawItemIDs: "1,2,3", Metric: "knn", NumNeighbors: 1})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out.Status != StatusEvaluated || out.Result.Reject {
		t.Fatalf("outcome = %+v, want evaluated accept", out)
	}
	want := (2 + math.Hypot(10, 9)) / 3
	if math.Abs(out.Result.Diversity-want) > 1e-9 {
		t.Errorf("Diversity = %v, want %v", out.Result.Diversity, want)
	}
	if out.Requested != 3 || out.Resolved != 3 || len(out.Missing) != 0 {
		t.Errorf("counts = %d/%d missing %v", out.Requested, out.Resolved, out.Missing)
	}
}

func TestHandle_DuplicatesRejected(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, nil)

	out, err := f.Handle(context.Background(), Request{RawItemIDs: "7,8,9", Metric: "knn", NumNeighbors: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Result.Reject || out.Result.Diversity != 0 {
		t.Errorf("Result = %+v, want reject with 0", out.Result)
	}
}

func TestHandle_MissingIDsSkipped(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, nil)

	out, err := f.Handle(context.Background(), Request{RawItemIDs: "1, 404, 2,3, 500", Metric: "KNN", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Resolved != 3 || out.Requested != 5 {
		t.Errorf("Resolved/Requested = %d/%d, want 3/5", out.Resolved, out.Requested)
	}
	if len(out.Missing) != 2 || out.Missing[0] != 404 || out.Missing[1] != 500 {
		t.Errorf("Missing = %v", out.Missing)
	}

	full, err := f.Handle(context.Background(), Request{RawItemIDs: "1,2,3", Metric: "knn", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	if full.Result != out.Result {
		t.Errorf("missing ids changed the result: %+v vs %+v", out.Result, full.Result)
	}
}

func TestHandle_NoValidEmbeddings(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, nil)

	out, err := f.Handle(context.Background(), Request{RawItemIDs: "100,200"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusNoValidEmbeddings {
		t.Errorf("Status = %v, want no_valid_embeddings", out.Status)
	}
	if !out.Result.Reject || out.Resolved != 0 || len(out.Missing) != 2 {
		t.Errorf("outcome = %+v", out)
	}
	if out.Status.String() != "no_valid_embeddings" || StatusEvaluated.String() != "evaluated" {
		t.Error("Status strings changed")
	}
}

func TestHandle_NotReady(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{}, nil)

	if _, err := f.Handle(context.Background(), Request{RawItemIDs: "1,2"}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Handle() error = %v, want ErrNotReady", err)
	}

	// Argument errors win over readiness.
	var pe *ParseError
	if _, err := f.Handle(context.Background(), Request{RawItemIDs: "1,x"}); !errors.As(err, &pe) {
		t.Errorf("Handle() error = %v, want *ParseError", err)
	}
}

func TestHandle_ArgumentErrors(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, func(c *Config) { c.MaxItems = 3 })

	tests := []struct {
		name  string
		req   Request
		check func(error) bool
	}{
		{"bad id", Request{RawItemIDs: "1,two,3"}, func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe) && pe.Token == "two" && pe.Position == 1
		}},
		{"empty token", Request{RawItemIDs: "1,,3"}, func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe) && pe.Position == 1
		}},
		{"empty list", Request{}, func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
		{"unknown metric", Request{RawItemIDs: "1", Metric: "cosine"}, func(err error) bool {
			var ue *diversity.UnknownMetricError
			return errors.As(err, &ue) && ue.Name == "cosine"
		}},
		{"negative k", Request{RawItemIDs: "1", Metric: "knn", NumNeighbors: -1}, func(err error) bool {
			return errors.Is(err, diversity.ErrInvalidNeighbors)
		}},
		{"too many", Request{RawItemIDs: "1,2,3,1"}, func(err error) bool {
			var te *TooManyItemsError
			return errors.As(err, &te) && te.Count == 4 && te.Max == 3
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.Handle(context.Background(), tt.req)
			if err == nil || !tt.check(err) {
				t.Errorf("Handle() error = %v", err)
			}
		})
	}
}

func TestHandle_ParsedIDsAndDefaults(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, func(c *Config) {
		c.DefaultMetric = diversity.MetricKNN
		c.DefaultNeighbors = 1
	})

	out, err := f.Handle(context.Background(), Request{ItemIDs: []int64{3, 2, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Metric != diversity.MetricKNN || out.NumNeighbors != 1 {
		t.Errorf("defaults not applied: %v k=%d", out.Metric, out.NumNeighbors)
	}
	if out.Result.Reject {
		t.Error("scenario group should be accepted")
	}
}

func TestHandle_ResultCache(t *testing.T) {
	t.Parallel()
	p := &staticProvider{snap: abcSnapshot(t)}
	f := newTestFilter(t, p, nil)
	ctx := context.Background()

	first, err := f.Handle(ctx, Request{RawItemIDs: "1,2,3", Metric: "knn", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first evaluation should not be cached")
	}

	// Reordered and with a missing id: same resolved set.
	second, err := f.Handle(ctx, Request{RawItemIDs: "3,404,1,2", Metric: "knn", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Result != first.Result {
		t.Errorf("second = %+v, want cached copy of %+v", second, first.Result)
	}

	// Different K is a different key.
	third, err := f.Handle(ctx, Request{RawItemIDs: "1,2,3", Metric: "knn", NumNeighbors: 2})
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("different K should miss the cache")
	}

	// A new artifact invalidates by checksum.
	p.set(mustSnapshot(t, map[int64][]float64{1: {0, 0}, 2: {0, 0}, 3: {0, 0}}, "other"))
	fourth, err := f.Handle(ctx, Request{RawItemIDs: "1,2,3", Metric: "knn", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Cached || !fourth.Result.Reject {
		t.Errorf("fourth = %+v, want fresh reject", fourth)
	}

	if st := f.CacheStats(); st.Hits != 1 || st.Size != 3 {
		t.Errorf("CacheStats() = %+v, want 1 hit and 3 entries", st)
	}
}

func TestHandle_KDEIgnoresK(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, nil)
	ctx := context.Background()

	a, err := f.Handle(ctx, Request{RawItemIDs: "1,2,3", Metric: "kde", NumNeighbors: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Handle(ctx, Request{RawItemIDs: "1,2,3", Metric: "kde", NumNeighbors: 7})
	if err != nil {
		t.Fatal(err)
	}
	if !b.Cached || a.Result != b.Result {
		t.Error("kde results should share a cache entry across K")
	}
	if math.IsNaN(a.Result.Diversity) || a.Result.Diversity <= 0 {
		t.Errorf("kde diversity = %v", a.Result.Diversity)
	}
}

func TestHandle_CacheDisabled(t *testing.T) {
	t.Parallel()
	f := newTestFilter(t, &staticProvider{snap: abcSnapshot(t)}, func(c *Config) { c.CacheSize = 0 })

	for i := 0; i < 2; i++ {
		out, err := f.Handle(context.Background(), Request{RawItemIDs: "1,2"})
		if err != nil {
			t.Fatal(err)
		}
		if out.Cached {
			t.Error("cache disabled but result marked cached")
		}
	}
	if st := f.CacheStats(); st.Hits != 0 || st.Size != 0 {
		t.Errorf("CacheStats() = %+v, want zero value", st)
	}
}

func TestParseItemIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    []int64
		wantPos int
	}{
		{"1", []int64{1}, -1},
		{"1,2,3", []int64{1, 2, 3}, -1},
		{" 4 , -5,6 ", []int64{4, -5, 6}, -1},
		{"2,2", []int64{2, 2}, -1},
		{"9223372036854775807", []int64{math.MaxInt64}, -1},
		{"", nil, 0},
		{"1,", nil, 1},
		{"1.5", nil, 0},
		{"1,abc", nil, 1},
		{"9223372036854775808", nil, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseItemIDs(tt.raw)
			if tt.wantPos >= 0 {
				var pe *ParseError
				if !errors.As(err, &pe) || pe.Position != tt.wantPos {
					t.Fatalf("ParseItemIDs(%q) error = %v, want ParseError at %d", tt.raw, err, tt.wantPos)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseItemIDs(%q) error = %v", tt.raw, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseItemIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseItemIDs(%q)[%d] = %d, want %d", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkHandle(b *testing.B) {
	vectors := make(map[int64][]float64, 1000)
	for i := int64(0); i < 1000; i++ {
		v := make([]float64, 64)
		for j := range v {
			v[j] = float64((i*31+int64(j))%17) / 17
		}
		vectors[i] = v
	}
	snap, err := embedding.NewSnapshot(vectors, "bench", "bench", time.Now())
	if err != nil {
		b.Fatal(err)
	}
	f := New(&staticProvider{snap: snap}, Config{Threshold: 0.5, Bandwidth: 1, MaxItems: 1000}, zerolog.Nop())
	req := Request{ItemIDs: make([]int64, 50), Metric: "knn", NumNeighbors: 5}
	for i := range req.ItemIDs {
		req.ItemIDs[i] = int64(i * 7)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Handle(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
