// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetric matches any *UnknownMetricError via errors.Is.
	ErrUnknownMetric = errors.New("unknown diversity metric")

	// ErrInvalidNeighbors is returned when knn is asked for fewer than one neighbor.
	ErrInvalidNeighbors = errors.New("num_neighbors must be at least 1")

	// ErrDimensionMismatch is returned when embeddings in one group differ in length.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)

// UnknownMetricError reports a metric name outside {kde, knn}.
type UnknownMetricError struct {
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown diversity metric %q (expected kde or knn)", e.Name)
}

func (e *UnknownMetricError) Unwrap() error {
	return ErrUnknownMetric
}
