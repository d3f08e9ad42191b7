// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

// Package models defines the JSON shapes served by the HTTP API.
package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"outcome": "evaluated", "reject": false, "diversity": 5.15},
//	  "metadata": {"timestamp": "2026-01-28T12:00:00Z", "query_time_ms": 1}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "INVALID_ITEM_IDS",
//	    "message": "invalid item id \"abc\" at position 2",
//	    "details": {"token": "abc", "position": 2}
//	  },
//	  "metadata": {"timestamp": "2026-01-28T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Cached is set when the diversity result came from the result cache;
// SnapshotVersion names the embedding snapshot the answer was computed on.
type Metadata struct {
	Timestamp       time.Time `json:"timestamp"`
	QueryTimeMS     int64     `json:"query_time_ms,omitempty"`
	Cached          bool      `json:"cached,omitempty"`
	SnapshotVersion uint64    `json:"snapshot_version,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Error codes:
//   - INVALID_ITEM_IDS: item_ids contained a non-integer token
//   - UNKNOWN_METRIC: diversity_metric is not kde or knn
//   - INVALID_NEIGHBORS: num_neighbors below 1 for knn
//   - VALIDATION_ERROR: request body or query failed validation
//   - EMBEDDINGS_NOT_READY: no snapshot has been loaded yet
//   - REFRESH_IN_PROGRESS: a manual refresh collided with a running one
//   - REFRESH_FAILED: the artifact could not be loaded
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
