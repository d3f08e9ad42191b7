// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/diversityfilter/internal/embedding"
	"github.com/tomtom215/diversityfilter/internal/logging"
	"github.com/tomtom215/diversityfilter/internal/metrics"
	"github.com/tomtom215/diversityfilter/internal/models"
)

// triggerManual labels refreshes started from the admin endpoint.
const triggerManual = "manual"

// EmbeddingsStatus reports the active snapshot and the last refresh attempt.
//
// @Summary Embedding snapshot status
// @Description Returns the active snapshot (version, item count, dimension, checksum, source) and the outcome of the last refresh attempt.
// @Tags Embeddings
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.EmbeddingStatus} "Snapshot status"
// @Router /api/v1/embeddings/status [get]
func (h *Handler) EmbeddingsStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   toEmbeddingStatus(h.store.Status()),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// EmbeddingsRefresh reloads the artifact now. The previous snapshot stays
// active when loading fails.
//
// @Summary Refresh embeddings
// @Description Loads the embedding artifact and publishes it if its checksum changed.
// @Tags Embeddings
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.RefreshResult} "Refresh completed"
// @Failure 409 {object} models.APIResponse "REFRESH_IN_PROGRESS"
// @Failure 429 {object} models.APIResponse "RATE_LIMIT_EXCEEDED"
// @Failure 502 {object} models.APIResponse "REFRESH_FAILED"
// @Router /api/v1/embeddings/refresh [post]
func (h *Handler) EmbeddingsRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RefreshTimeout)
	defer cancel()

	report, err := h.store.Refresh(ctx)
	if errors.Is(err, embedding.ErrRefreshInProgress) {
		metrics.RecordRefreshSkipped(triggerManual)
		respondError(w, http.StatusConflict, "REFRESH_IN_PROGRESS", "A refresh is already running", nil)
		return
	}

	var duration time.Duration
	if report != nil {
		duration = report.Duration
	}
	metrics.RecordRefresh(triggerManual, duration, report != nil && report.Changed, err)

	if err != nil {
		details := map[string]interface{}{}
		var le *embedding.LoadError
		if errors.As(err, &le) {
			details["reason"] = le.Reason()
			details["source"] = le.Source
		}
		respondErrorWithDetails(w, http.StatusBadGateway, &models.APIError{
			Code:    "REFRESH_FAILED",
			Message: "Failed to load embeddings; the previous snapshot is still active",
			Details: details,
		}, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Bool("changed", report.Changed).
		Uint64("version", report.Snapshot.Version()).
		Msg("manual embedding refresh")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.RefreshResult{
			Changed:    report.Changed,
			Version:    report.Snapshot.Version(),
			Items:      report.Snapshot.Len(),
			Dimension:  report.Snapshot.Dimension(),
			DurationMS: report.Duration.Milliseconds(),
		},
		Metadata: models.Metadata{
			Timestamp:       time.Now(),
			SnapshotVersion: report.Snapshot.Version(),
		},
	})
}

func toEmbeddingStatus(st embedding.Status) models.EmbeddingStatus {
	out := models.EmbeddingStatus{
		Ready:             st.Ready,
		Version:           st.Version,
		Items:             st.Items,
		Dimension:         st.Dimension,
		Checksum:          st.Checksum,
		Source:            st.Source,
		RefreshInProgress: st.RefreshInProgress,
		RestoredFromCache: st.RestoredFromCache,
	}
	if !st.LoadedAt.IsZero() {
		t := st.LoadedAt
		out.LoadedAt = &t
	}
	if !st.LastAttempt.IsZero() {
		t := st.LastAttempt
		out.LastAttemptAt = &t
	}
	if st.LastError != nil {
		out.LastError = st.LastError.Error()
	}
	return out
}
