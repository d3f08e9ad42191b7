// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeSource serves in-memory artifacts. Setting gate makes Open block until
// the gate is closed or ctx ends.
type fakeSource struct {
	mu      sync.Mutex
	name    string
	content string
	openErr error
	gate    chan struct{}
	opened  chan struct{}
}

func newFakeSource(content string) *fakeSource {
	return &fakeSource{name: "fake.json", content: content}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) set(content string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content, f.openErr = content, err
}

func (f *fakeSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f.mu.Lock()
	content, err, gate, opened := f.content, f.openErr, f.gate, f.opened
	f.mu.Unlock()

	if opened != nil {
		close(opened)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &LoadError{Source: f.name, Kind: ReasonCanceled, Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func newTestStore(t *testing.T, src Source, opts ...StoreOption) *Store {
	t.Helper()
	return NewStore(NewLoader(src, FormatJSON), opts...)
}

func TestStore_EmptyUntilRefresh(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, newFakeSource(`{"1":[0,0]}`))

	if s.Ready() || s.Snapshot() != nil {
		t.Fatal("new store should not be ready")
	}
	if _, ok := s.Lookup(1); ok {
		t.Error("Lookup on empty store should miss")
	}

	report, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !report.Changed || report.Snapshot.Version() != 1 {
		t.Errorf("report = %+v, want changed version 1", report)
	}
	if !s.Ready() {
		t.Error("store should be ready after refresh")
	}
	if v, ok := s.Lookup(1); !ok || len(v) != 2 {
		t.Errorf("Lookup(1) = %v, %v", v, ok)
	}
}

func TestStore_LoadErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()
	src := newFakeSource(`{"1":[0,0],"2":[1,1]}`)
	s := newTestStore(t, src)

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	failures := []struct {
		content string
		err     error
	}{
		{`{"1":[0,0],"2":[1]}`, nil},
		{`not json`, nil},
		{``, &LoadError{Source: "fake.json", Kind: ReasonMissing, Err: errors.New("gone")}},
		{``, errors.New("disk on fire")},
	}
	for i, f := range failures {
		src.set(f.content, f.err)
		_, err := s.Refresh(context.Background())
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("failure %d: err = %v, want *LoadError", i, err)
		}
		if s.Snapshot() != before {
			t.Fatalf("failure %d replaced the snapshot", i)
		}
	}

	st := s.Status()
	if st.LastError == nil || !st.Ready || st.Version != 1 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestStore_UnchangedArtifactNotRepublished(t *testing.T) {
	t.Parallel()
	src := newFakeSource(`{"1":[0,0]}`)
	s := newTestStore(t, src)

	first, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second.Changed || second.Snapshot != first.Snapshot {
		t.Errorf("identical artifact should not be republished: %+v", second)
	}

	src.set(`{"1":[0,1]}`, nil)
	third, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !third.Changed || third.Snapshot.Version() != 2 {
		t.Errorf("changed artifact should publish version 2: %+v", third)
	}
}

func TestStore_ConcurrentRefreshRejected(t *testing.T) {
	t.Parallel()
	src := newFakeSource(`{"1":[0,0]}`)
	src.gate = make(chan struct{})
	src.opened = make(chan struct{})
	s := newTestStore(t, src)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		done <- err
	}()
	<-src.opened

	if !s.Status().RefreshInProgress {
		t.Error("Status should report a refresh in progress")
	}
	if _, err := s.Refresh(context.Background()); !errors.Is(err, ErrRefreshInProgress) {
		t.Errorf("second Refresh() error = %v, want ErrRefreshInProgress", err)
	}

	close(src.gate)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	if !s.Ready() {
		t.Error("first refresh should have published")
	}
}

func TestStore_CanceledRefreshDoesNotPublish(t *testing.T) {
	t.Parallel()
	src := newFakeSource(`{"1":[0,0]}`)
	src.gate = make(chan struct{})
	src.opened = make(chan struct{})
	s := newTestStore(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		done <- err
	}()
	<-src.opened
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh() error = %v, want context.Canceled", err)
	}
	if s.Ready() {
		t.Error("canceled refresh must not publish")
	}
}

// TestStore_AtomicSwap checks that readers holding one snapshot always see
// vectors from a single artifact version while refreshes publish new ones.
func TestStore_AtomicSwap(t *testing.T) {
	t.Parallel()
	const items = 200

	artifact := func(gen int) string {
		var b strings.Builder
		b.WriteString("{")
		for i := 0; i < items; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `"%d":[%d,%d]`, i, gen, gen)
		}
		b.WriteString("}")
		return b.String()
	}

	src := newFakeSource(artifact(0))
	s := newTestStore(t, src)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				snap := s.Snapshot()
				first, _ := snap.Lookup(0)
				for i := int64(1); i < items; i++ {
					v, ok := snap.Lookup(i)
					if !ok || v[0] != first[0] {
						errs <- fmt.Errorf("snapshot v%d mixes generations at item %d", snap.Version(), i)
						return
					}
				}
			}
		}()
	}

	for gen := 1; gen <= 20; gen++ {
		src.set(artifact(gen), nil)
		if _, err := s.Refresh(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	cancel()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if got := s.Snapshot().Version(); got != 21 {
		t.Errorf("final version = %d, want 21", got)
	}
}

func openMemoryCache(t *testing.T) *SnapshotCache {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotCacheFromDB(db)
}

func TestStore_RestoreFromCache(t *testing.T) {
	t.Parallel()
	cache := openMemoryCache(t)

	// First process: load and persist.
	first := newTestStore(t, newFakeSource(`{"1":[0,0],"2":[3,4]}`), WithSnapshotCache(cache))
	if _, err := first.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Second process: artifact unavailable, cache still warm.
	src := newFakeSource("")
	src.openErr = &LoadError{Source: "fake.json", Kind: ReasonMissing, Err: errors.New("gone")}
	second := newTestStore(t, src, WithSnapshotCache(cache))

	restored, err := second.Restore(context.Background())
	if err != nil || !restored {
		t.Fatalf("Restore() = %v, %v; want true, nil", restored, err)
	}
	if v, ok := second.Lookup(2); !ok || v[1] != 4 {
		t.Errorf("Lookup(2) after restore = %v, %v", v, ok)
	}
	if !second.Status().RestoredFromCache {
		t.Error("Status should report the restore")
	}
	if second.Snapshot().Checksum() != first.Snapshot().Checksum() {
		t.Error("restored snapshot should keep the artifact checksum")
	}

	// A failing refresh keeps the restored snapshot.
	if _, err := second.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if !second.Ready() {
		t.Error("restored snapshot should survive a failed refresh")
	}

	// A second Restore on a ready store is a no-op.
	if again, _ := second.Restore(context.Background()); again {
		t.Error("Restore on a ready store should not republish")
	}
}

func TestStore_RestoreMiss(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeSource(`{}`), WithSnapshotCache(openMemoryCache(t)))
	restored, err := s.Restore(context.Background())
	if err != nil || restored {
		t.Errorf("Restore() on empty cache = %v, %v; want false, nil", restored, err)
	}

	bare := newTestStore(t, newFakeSource(`{}`))
	if restored, err := bare.Restore(context.Background()); err != nil || restored {
		t.Errorf("Restore() without cache = %v, %v", restored, err)
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	t.Parallel()
	cache := openMemoryCache(t)

	if _, err := cache.Load(context.Background()); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Load() on empty cache = %v, want ErrCacheMiss", err)
	}

	snap, err := NewSnapshot(map[int64][]float64{-5: {1.5, -2}, 9: {0, 0}}, "s3://m/items.json", "abc", testTime)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Save(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	got, err := cache.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 || got.Dimension() != 2 || got.Checksum() != "abc" || !got.LoadedAt().Equal(testTime) {
		t.Errorf("Load() = len %d dim %d checksum %q loaded %v", got.Len(), got.Dimension(), got.Checksum(), got.LoadedAt())
	}
	if v, ok := got.Lookup(-5); !ok || v[0] != 1.5 {
		t.Errorf("Lookup(-5) = %v, %v", v, ok)
	}

	if err := cache.Save(context.Background(), nil); err == nil {
		t.Error("Save(nil) should fail")
	}
}
