// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// KNN scores uniqueness as the mean Euclidean distance to the K nearest
// other members of the group.
type KNN struct {
	K int
}

// Uniqueness implements Estimator. Only the item's own index is excluded, so
// an exact duplicate elsewhere in the group counts as a neighbor at distance 0.
func (e KNN) Uniqueness(points [][]float64) ([]float64, error) {
	if e.K < 1 {
		return nil, ErrInvalidNeighbors
	}
	n := len(points)
	out := make([]float64, n)
	if n < 2 {
		return out, nil
	}

	kEff := min(e.K, n-1)
	dists := make([]float64, 0, n-1)
	for i, xi := range points {
		dists = dists[:0]
		for j, xj := range points {
			if i == j {
				continue
			}
			dists = append(dists, floats.Distance(xi, xj, 2))
		}
		slices.Sort(dists)
		out[i] = floats.Sum(dists[:kEff]) / float64(kEff)
	}
	return out, nil
}
