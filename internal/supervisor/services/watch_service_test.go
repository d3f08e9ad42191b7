// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

type mockTriggerer struct {
	mu      sync.Mutex
	reasons []string
	ch      chan string
}

func newMockTriggerer() *mockTriggerer {
	return &mockTriggerer{ch: make(chan string, 16)}
}

func (m *mockTriggerer) Trigger(reason string) bool {
	m.mu.Lock()
	m.reasons = append(m.reasons, reason)
	m.mu.Unlock()
	m.ch <- reason
	return true
}

func (m *mockTriggerer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reasons)
}

func TestWatchService_Relevant(t *testing.T) {
	svc := NewWatchService(WatchConfig{Path: "/data/emb/items.json"}, newMockTriggerer(), zerolog.Nop())

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/data/emb/items.json", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/data/emb/items.json", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/data/emb/..data", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/data/emb/items.json", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/data/emb/other.json", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/data/emb/items.json.tmp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := svc.relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestWatchService_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	if err := os.WriteFile(path, []byte(`{"1":[0]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	trig := newMockTriggerer()
	svc := NewWatchService(WatchConfig{
		Path:        path,
		Debounce:    20 * time.Millisecond,
		MinInterval: 10 * time.Millisecond,
	}, trig, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes collapses into one trigger.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{"1":[1]}`), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case reason := <-trig.ch:
		if reason != TriggerWatch {
			t.Errorf("reason = %q, want %q", reason, TriggerWatch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh triggered")
	}

	time.Sleep(100 * time.Millisecond)
	if n := trig.count(); n != 1 {
		t.Errorf("triggers = %d, want 1 for one burst", n)
	}

	cancel()
	<-errCh
}

func TestWatchService_MissingDirectory(t *testing.T) {
	svc := NewWatchService(WatchConfig{Path: filepath.Join(t.TempDir(), "nope", "items.json")}, newMockTriggerer(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Serve(ctx); err == nil {
		t.Error("Serve() should fail when the directory does not exist")
	}
}
