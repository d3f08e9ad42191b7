// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/diversityfilter/internal/diversity"
	"github.com/tomtom215/diversityfilter/internal/filter"
	"github.com/tomtom215/diversityfilter/internal/logging"
	"github.com/tomtom215/diversityfilter/internal/models"
)

const (
	formatEnvelope = "envelope"
	formatTuple    = "tuple"

	// OutcomeHeader carries the outcome name on every diversity response so
	// tuple clients can tell a null reply from a transport error.
	OutcomeHeader = "X-Diversity-Outcome"
)

// Diversity evaluates a group given as query parameters. The reply is the bare
// [reject, diversity] pair unless format=envelope is requested.
//
// @Summary Evaluate group diversity
// @Description Looks up the embedding of every item id, scores each item's uniqueness within the group and rejects the group when the mean is strictly below the threshold. Unknown ids are skipped. The body is [reject, diversity], or null when no id has an embedding; format=envelope returns the full decision in the standard envelope. Errors always use the envelope.
// @Tags Diversity
// @Produce json
// @Param item_ids query string true "Comma-separated item ids" example(1,2,3)
// @Param diversity_metric query string false "kde or knn (case-insensitive)"
// @Param num_neighbors query int false "Neighbors for knn; 0 or omitted uses the configured default"
// @Param format query string false "tuple (default) or envelope"
// @Success 200 {array} interface{} "[reject, diversity], or null when no id has an embedding"
// @Failure 400 {object} models.APIResponse "INVALID_ITEM_IDS, UNKNOWN_METRIC, INVALID_NEIGHBORS or VALIDATION_ERROR"
// @Failure 429 {object} models.APIResponse "RATE_LIMIT_EXCEEDED"
// @Failure 503 {object} models.APIResponse "EMBEDDINGS_NOT_READY"
// @Router /diversity/ [get]
func (h *Handler) Diversity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	k, err := parseIntParam(q.Get("num_neighbors"), 0)
	if err != nil {
		respondErrorWithDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: "num_neighbors must be an integer",
			Details: map[string]interface{}{"field": "num_neighbors", "value": logging.SanitizeValue(q.Get("num_neighbors"))},
		}, nil)
		return
	}

	query := models.DiversityQuery{
		Metric:       q.Get("diversity_metric"),
		NumNeighbors: k,
		Format:       q.Get("format"),
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondErrorWithDetails(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	h.evaluate(w, r, filter.Request{
		// An absent parameter still goes through the parser so it fails as
		// INVALID_ITEM_IDS at position 0.
		RawItemIDs:   q.Get("item_ids"),
		ItemIDs:      nil,
		Metric:       query.Metric,
		NumNeighbors: query.NumNeighbors,
	}, formatOrDefault(query.Format, formatTuple), start)
}

// DiversityPost evaluates a group given as a JSON body.
//
// @Summary Evaluate group diversity (JSON body)
// @Description Same decision as GET /diversity/ with item ids in a JSON array.
// @Tags Diversity
// @Accept json
// @Produce json
// @Param request body models.DiversityRequest true "Group to evaluate"
// @Param format query string false "envelope (default) or tuple"
// @Success 200 {object} models.APIResponse{data=models.DiversityResult} "Decision"
// @Failure 400 {object} models.APIResponse "INVALID_REQUEST, UNKNOWN_METRIC, INVALID_NEIGHBORS or VALIDATION_ERROR"
// @Failure 429 {object} models.APIResponse "RATE_LIMIT_EXCEEDED"
// @Failure 503 {object} models.APIResponse "EMBEDDINGS_NOT_READY"
// @Router /diversity/ [post]
func (h *Handler) DiversityPost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", err)
		return
	}

	var req models.DiversityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorWithDetails(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	format := r.URL.Query().Get("format")
	if apiErr := validateRequest(&models.DiversityQuery{Format: format}); apiErr != nil {
		respondErrorWithDetails(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	k := 0
	if req.NumNeighbors != nil {
		k = *req.NumNeighbors
	}
	h.evaluate(w, r, filter.Request{
		ItemIDs:      req.ItemIDs,
		Metric:       req.Metric,
		NumNeighbors: k,
	}, formatOrDefault(format, formatEnvelope), start)
}

func formatOrDefault(format, def string) string {
	if format == "" {
		return def
	}
	return format
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, req filter.Request, format string, start time.Time) {
	out, err := h.filter.Handle(r.Context(), req)
	if err != nil {
		h.respondFilterError(w, err)
		return
	}

	w.Header().Set(OutcomeHeader, out.Status.String())

	if format == formatTuple {
		if out.Status == filter.StatusNoValidEmbeddings {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeJSON(w, http.StatusOK, [2]interface{}{out.Result.Reject, out.Result.Diversity})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   toDiversityResult(out),
		Metadata: models.Metadata{
			Timestamp:       time.Now(),
			QueryTimeMS:     time.Since(start).Milliseconds(),
			Cached:          out.Cached,
			SnapshotVersion: out.SnapshotVersion,
		},
	})
}

func toDiversityResult(out *filter.Outcome) models.DiversityResult {
	res := models.DiversityResult{
		Outcome:        out.Status.String(),
		Reject:         out.Result.Reject,
		Metric:         out.Metric.String(),
		Threshold:      out.Threshold,
		Requested:      out.Requested,
		Resolved:       out.Resolved,
		MissingItemIDs: out.Missing,
	}
	if out.Metric == diversity.MetricKNN {
		res.NumNeighbors = out.NumNeighbors
	}
	if out.Status == filter.StatusEvaluated {
		d := out.Result.Diversity
		res.Diversity = &d
	}
	return res
}

// respondFilterError maps filter and estimator errors to API error codes.
func (h *Handler) respondFilterError(w http.ResponseWriter, err error) {
	var (
		parseErr  *filter.ParseError
		metricErr *diversity.UnknownMetricError
		tooMany   *filter.TooManyItemsError
	)
	switch {
	case errors.As(err, &parseErr):
		respondErrorWithDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "INVALID_ITEM_IDS",
			Message: logging.SanitizeValue(parseErr.Error()),
			Details: map[string]interface{}{
				"token":    logging.SanitizeValue(parseErr.Token),
				"position": parseErr.Position,
			},
		}, nil)
	case errors.As(err, &metricErr):
		respondErrorWithDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "UNKNOWN_METRIC",
			Message: logging.SanitizeValue(metricErr.Error()),
			Details: map[string]interface{}{
				"diversity_metric": logging.SanitizeValue(metricErr.Name),
				"allowed":          []string{diversity.MetricKDE.String(), diversity.MetricKNN.String()},
			},
		}, nil)
	case errors.Is(err, diversity.ErrInvalidNeighbors):
		respondError(w, http.StatusBadRequest, "INVALID_NEIGHBORS", err.Error(), nil)
	case errors.As(err, &tooMany):
		respondErrorWithDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: tooMany.Error(),
			Details: map[string]interface{}{
				"field": "item_ids",
				"count": tooMany.Count,
				"max":   tooMany.Max,
			},
		}, nil)
	case errors.Is(err, filter.ErrNotReady):
		w.Header().Set("Retry-After", retryAfterSeconds(h.cfg.RetryAfter))
		respondError(w, http.StatusServiceUnavailable, "EMBEDDINGS_NOT_READY", "Embeddings are still loading, retry shortly", nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to evaluate diversity", err)
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
