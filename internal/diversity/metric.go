// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package diversity

import (
	"strconv"
	"strings"
)

// Metric selects the uniqueness estimator. The zero value is invalid.
type Metric int

const (
	MetricKDE Metric = iota + 1
	MetricKNN
)

// String returns the wire name of the metric.
func (m Metric) String() string {
	switch m {
	case MetricKDE:
		return "kde"
	case MetricKNN:
		return "knn"
	default:
		return "Metric(" + strconv.Itoa(int(m)) + ")"
	}
}

// Valid reports whether m is one of the defined metrics.
func (m Metric) Valid() bool {
	return m == MetricKDE || m == MetricKNN
}

// ParseMetric maps a wire name to a Metric. Matching ignores case and
// surrounding whitespace.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kde":
		return MetricKDE, nil
	case "knn":
		return MetricKNN, nil
	default:
		return 0, &UnknownMetricError{Name: name}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &UnknownMetricError{Name: m.String()}
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
