// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"time"
)

// Snapshot is an immutable id to vector mapping. Vectors returned by its
// methods must not be modified.
type Snapshot struct {
	vectors  map[int64][]float64
	dim      int
	version  uint64
	checksum string
	loadedAt time.Time
	source   string
}

// NewSnapshot validates vectors and wraps them in a snapshot. The map is
// owned by the snapshot afterwards.
func NewSnapshot(vectors map[int64][]float64, source, checksum string, loadedAt time.Time) (*Snapshot, error) {
	dim, err := validateVectors(vectors, source)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		vectors:  vectors,
		dim:      dim,
		checksum: checksum,
		loadedAt: loadedAt,
		source:   source,
	}, nil
}

// withVersion returns a shallow copy carrying version.
func (s *Snapshot) withVersion(version uint64) *Snapshot {
	cp := *s
	cp.version = version
	return &cp
}

// Lookup returns the vector for id.
func (s *Snapshot) Lookup(id int64) ([]float64, bool) {
	v, ok := s.vectors[id]
	return v, ok
}

// Resolve looks up ids in order. Duplicated ids resolve once per occurrence;
// resolved[i] is the id of vectors[i].
func (s *Snapshot) Resolve(ids []int64) (vectors [][]float64, resolved, missing []int64) {
	vectors = make([][]float64, 0, len(ids))
	resolved = make([]int64, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vectors[id]; ok {
			vectors = append(vectors, v)
			resolved = append(resolved, id)
			continue
		}
		missing = append(missing, id)
	}
	return vectors, resolved, missing
}

// Len returns the number of items.
func (s *Snapshot) Len() int { return len(s.vectors) }

// Dimension returns the shared vector length.
func (s *Snapshot) Dimension() int { return s.dim }

// Version is assigned by the Store on publication and increases by one per
// published snapshot.
func (s *Snapshot) Version() uint64 { return s.version }

// Checksum is the hex BLAKE2b-256 of the raw artifact bytes.
func (s *Snapshot) Checksum() string { return s.checksum }

// LoadedAt is when the artifact was read.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Source names where the artifact came from.
func (s *Snapshot) Source() string { return s.source }
