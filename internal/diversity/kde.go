// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// KDE scores uniqueness as the reciprocal of a Gaussian kernel density
// fitted on the group, evaluated at each member.
type KDE struct {
	Bandwidth float64
}

// Uniqueness implements Estimator.
//
// For N points in D dimensions with bandwidth h:
//
//	log p_i = logsumexp_j(-|x_i - x_j|^2 / 2h^2) - log N - (D/2) log 2pi - D log h
//	u_i     = exp(-log p_i)
//
// The self term keeps every density positive. In high dimensions exp can
// still overflow; such scores are clamped to math.MaxFloat64.
func (e KDE) Uniqueness(points [][]float64) ([]float64, error) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}
	h := e.Bandwidth
	if !(h > 0) {
		h = DefaultBandwidth
	}
	dim := float64(len(points[0]))

	norm := math.Log(float64(n)) + dim/2*math.Log(2*math.Pi) + dim*math.Log(h)
	twoH2 := 2 * h * h

	terms := make([]float64, n)
	out := make([]float64, n)
	for i, xi := range points {
		for j, xj := range points {
			d := floats.Distance(xi, xj, 2)
			terms[j] = -(d * d) / twoH2
		}
		logDensity := floats.LogSumExp(terms) - norm
		out[i] = clampScore(math.Exp(-logDensity))
	}
	return out, nil
}

// clampScore keeps scores finite so they survive JSON encoding.
func clampScore(u float64) float64 {
	if math.IsInf(u, 0) || math.IsNaN(u) {
		return math.MaxFloat64
	}
	return u
}
