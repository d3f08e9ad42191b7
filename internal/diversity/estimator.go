// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

// DefaultBandwidth is the Gaussian kernel bandwidth used when none is configured.
const DefaultBandwidth = 1.0

// Estimator returns one uniqueness score per input point, in input order.
// Callers guarantee len(points) >= 1 and a shared dimension.
type Estimator interface {
	Uniqueness(points [][]float64) ([]float64, error)
}

// NewEstimator builds the estimator for m. k is only used by knn and
// bandwidth only by kde; a non-positive bandwidth means DefaultBandwidth.
func NewEstimator(m Metric, k int, bandwidth float64) (Estimator, error) {
	switch m {
	case MetricKDE:
		if !(bandwidth > 0) {
			bandwidth = DefaultBandwidth
		}
		return KDE{Bandwidth: bandwidth}, nil
	case MetricKNN:
		if k < 1 {
			return nil, ErrInvalidNeighbors
		}
		return KNN{K: k}, nil
	default:
		return nil, &UnknownMetricError{Name: m.String()}
	}
}
