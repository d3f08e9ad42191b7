// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/diversityfilter/internal/models"
)

// Health handles health check requests
//
// @Summary Get service health status
// @Description Returns overall status, readiness, the active snapshot version and uptime. Always 200; status is "degraded" until embeddings load.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /api/v1/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.store.Status()

	status := "healthy"
	if !st.Ready {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:          status,
			Ready:           st.Ready,
			SnapshotVersion: st.Version,
			Items:           st.Items,
			Uptime:          h.uptime(),
			Version:         h.cfg.Version,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Description Returns 200 OK if the process is alive, whether or not embeddings are loaded.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": h.uptime(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only once an embedding snapshot has been published.
//
// @Summary Kubernetes readiness probe
// @Description Returns 200 once embeddings are loaded and 503 before that.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Service is ready"
// @Failure 503 {object} models.APIResponse{data=models.HealthStatus} "Embeddings not loaded yet"
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.store.Status()

	statusCode := http.StatusOK
	status := "ready"
	if !st.Ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
		w.Header().Set("Retry-After", retryAfterSeconds(h.cfg.RetryAfter))
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: models.HealthStatus{
			Status:          status,
			Ready:           st.Ready,
			SnapshotVersion: st.Version,
			Items:           st.Items,
			Uptime:          h.uptime(),
			Version:         h.cfg.Version,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
