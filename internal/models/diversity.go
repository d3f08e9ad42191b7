// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package models

import "time"

// Outcome values reported in DiversityResult.Outcome.
const (
	OutcomeEvaluated         = "evaluated"
	OutcomeNoValidEmbeddings = "no_valid_embeddings"
)

// DiversityRequest is the POST /diversity/ body.
//
// An omitted or zero NumNeighbors falls back to the configured default; a
// negative one is rejected by the filter for knn. Metric is checked by the
// filter as well.
type DiversityRequest struct {
	ItemIDs      []int64 `json:"item_ids" validate:"required,min=1"`
	Metric       string  `json:"diversity_metric,omitempty"`
	NumNeighbors *int    `json:"num_neighbors,omitempty" validate:"omitempty,max=10000"`
}

// DiversityQuery carries the validated GET /diversity/ query parameters that
// are not item ids. An empty Format means tuple for GET and envelope for POST. The metric name is checked by the filter so an unknown
// name reports UNKNOWN_METRIC rather than VALIDATION_ERROR.
type DiversityQuery struct {
	Metric       string `query:"diversity_metric"`
	NumNeighbors int    `query:"num_neighbors" validate:"max=10000"`
	Format       string `query:"format" validate:"omitempty,oneof=envelope tuple"`
}

// DiversityResult is the decision for one group.
//
// Diversity is omitted for the no_valid_embeddings outcome so clients cannot
// mistake it for a computed score of zero.
type DiversityResult struct {
	Outcome        string   `json:"outcome"`
	Reject         bool     `json:"reject"`
	Diversity      *float64 `json:"diversity,omitempty"`
	Metric         string   `json:"metric"`
	NumNeighbors   int      `json:"num_neighbors,omitempty"`
	Threshold      float64  `json:"threshold"`
	Requested      int      `json:"requested"`
	Resolved       int      `json:"resolved"`
	MissingItemIDs []int64  `json:"missing_item_ids,omitempty"`
}

// EmbeddingStatus describes the active snapshot and the refresh loop.
type EmbeddingStatus struct {
	Ready             bool       `json:"ready"`
	Version           uint64     `json:"version"`
	Items             int        `json:"items"`
	Dimension         int        `json:"dimension"`
	Checksum          string     `json:"checksum,omitempty"`
	Source            string     `json:"source,omitempty"`
	LoadedAt          *time.Time `json:"loaded_at,omitempty"`
	LastAttemptAt     *time.Time `json:"last_attempt_at,omitempty"`
	LastError         string     `json:"last_error,omitempty"`
	RefreshInProgress bool       `json:"refresh_in_progress"`
	RestoredFromCache bool       `json:"restored_from_cache"`
}

// RefreshResult is returned by POST /api/v1/embeddings/refresh.
type RefreshResult struct {
	Changed    bool   `json:"changed"`
	Version    uint64 `json:"version"`
	Items      int    `json:"items"`
	Dimension  int    `json:"dimension"`
	DurationMS int64  `json:"duration_ms"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status          string `json:"status"`
	Ready           bool   `json:"ready"`
	SnapshotVersion uint64 `json:"snapshot_version,omitempty"`
	Items           int    `json:"items,omitempty"`
	Uptime          string `json:"uptime"`
	Version         string `json:"version"`
}
