// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultThreshold is the diversity below which a group is rejected.
const DefaultThreshold = 0.5

// Result is the decision for one group.
type Result struct {
	Reject    bool
	Diversity float64
}

// Evaluator holds the fixed parameters of a deployment.
type Evaluator struct {
	Threshold float64
	Bandwidth float64
}

// NewEvaluator creates an evaluator. A non-positive bandwidth means
// DefaultBandwidth.
func NewEvaluator(threshold, bandwidth float64) *Evaluator {
	if !(bandwidth > 0) {
		bandwidth = DefaultBandwidth
	}
	return &Evaluator{Threshold: threshold, Bandwidth: bandwidth}
}

// Evaluate scores embeddings with the default bandwidth.
func Evaluate(embeddings [][]float64, threshold float64, metric Metric, k int) (Result, error) {
	return NewEvaluator(threshold, DefaultBandwidth).Evaluate(embeddings, metric, k)
}

// Evaluate returns the group decision. Arguments are validated before the
// empty-group shortcut so a bad metric or k fails the same way regardless of
// the data.
func (e *Evaluator) Evaluate(embeddings [][]float64, metric Metric, k int) (Result, error) {
	est, err := NewEstimator(metric, k, e.Bandwidth)
	if err != nil {
		return Result{}, err
	}
	if len(embeddings) == 0 {
		return Result{Reject: true, Diversity: 0}, nil
	}
	if err := checkDimensions(embeddings); err != nil {
		return Result{}, err
	}

	uniqueness, err := est.Uniqueness(embeddings)
	if err != nil {
		return Result{}, fmt.Errorf("%s uniqueness: %w", metric, err)
	}

	diversity := clampScore(floats.Sum(uniqueness) / float64(len(embeddings)))
	return Result{
		Reject:    diversity < e.Threshold,
		Diversity: diversity,
	}, nil
}

func checkDimensions(embeddings [][]float64) error {
	dim := len(embeddings[0])
	for i, v := range embeddings[1:] {
		if len(v) != dim {
			return fmt.Errorf("%w: item %d has %d, item 0 has %d", ErrDimensionMismatch, i+1, len(v), dim)
		}
	}
	return nil
}
