// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const snapshotCacheKey = "embeddings:snapshot:current"

// SnapshotCache persists the last published snapshot in BadgerDB so a
// restart can serve requests before the artifact is reloaded.
type SnapshotCache struct {
	db     *badger.DB
	ownsDB bool
}

// persistedSnapshot is the stored form. The version is not kept; the
// restoring store assigns its own.
type persistedSnapshot struct {
	Source   string              `json:"source"`
	Checksum string              `json:"checksum"`
	LoadedAt time.Time           `json:"loaded_at"`
	Vectors  map[int64][]float64 `json:"vectors"`
}

// OpenSnapshotCache opens (or creates) a BadgerDB at path.
//
// Example:
//
//	cache, err := embedding.OpenSnapshotCache("/data/diversityfilter/snapshot")
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
func OpenSnapshotCache(path string) (*SnapshotCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshot cache: %w", err)
	}
	return &SnapshotCache{db: db, ownsDB: true}, nil
}

// NewSnapshotCacheFromDB wraps an existing BadgerDB. Close leaves db open.
func NewSnapshotCacheFromDB(db *badger.DB) *SnapshotCache {
	return &SnapshotCache{db: db}
}

// Save replaces the stored snapshot.
func (c *SnapshotCache) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(persistedSnapshot{
		Source:   snap.source,
		Checksum: snap.checksum,
		LoadedAt: snap.loadedAt,
		Vectors:  snap.vectors,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotCacheKey), data)
	})
}

// Load returns the stored snapshot, or ErrCacheMiss. The stored vectors are
// validated again so a corrupt entry cannot be published.
func (c *SnapshotCache) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p persistedSnapshot
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotCacheKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}

	return NewSnapshot(p.Vectors, p.Source, p.Checksum, p.LoadedAt)
}

// Close closes the database if the cache opened it.
func (c *SnapshotCache) Close() error {
	if !c.ownsDB {
		return nil
	}
	return c.db.Close()
}
