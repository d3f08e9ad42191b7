// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrRefreshInProgress is returned when Refresh is called while another
	// refresh is running.
	ErrRefreshInProgress = errors.New("embedding refresh already in progress")

	// ErrCacheMiss is returned by SnapshotCache.Load when nothing was saved.
	ErrCacheMiss = errors.New("no cached embedding snapshot")
)

// LoadReason classifies a load failure. It doubles as a metric label.
type LoadReason string

const (
	ReasonMissing   LoadReason = "missing"
	ReasonSource    LoadReason = "source"
	ReasonFormat    LoadReason = "format"
	ReasonDimension LoadReason = "dimension"
	ReasonEmpty     LoadReason = "empty"
	ReasonNonFinite LoadReason = "non_finite"
	ReasonCanceled  LoadReason = "canceled"
)

// LoadError reports why an artifact could not become a snapshot.
type LoadError struct {
	Source string
	Kind   LoadReason
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load embeddings from %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Reason returns the failure class as a string.
func (e *LoadError) Reason() string {
	return string(e.Kind)
}

func loadErrorf(source string, kind LoadReason, format string, args ...any) *LoadError {
	return &LoadError{Source: source, Kind: kind, Err: fmt.Errorf(format, args...)}
}
