// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package validation

import (
	"strings"
	"testing"
)

type testQuery struct {
	ItemIDs      []int64 `json:"item_ids" validate:"required,min=1,max=3"`
	Metric       string  `json:"diversity_metric" validate:"omitempty,oneof=kde knn"`
	NumNeighbors int     `query:"num_neighbors" json:"k" validate:"min=1,max=100"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	q := testQuery{ItemIDs: []int64{1, 2}, Metric: "knn", NumNeighbors: 5}
	if err := ValidateStruct(&q); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     testQuery
		wantField string
		wantMsg   string
	}{
		{
			name:      "no items",
			query:     testQuery{NumNeighbors: 5},
			wantField: "item_ids",
			wantMsg:   "item_ids is required",
		},
		{
			name:      "too many items",
			query:     testQuery{ItemIDs: []int64{1, 2, 3, 4}, NumNeighbors: 5},
			wantField: "item_ids",
			wantMsg:   "item_ids must contain at most 3 items",
		},
		{
			name:      "bad metric",
			query:     testQuery{ItemIDs: []int64{1}, Metric: "cosine", NumNeighbors: 5},
			wantField: "diversity_metric",
			wantMsg:   "diversity_metric must be one of: kde knn",
		},
		{
			name:      "query tag wins over json tag",
			query:     testQuery{ItemIDs: []int64{1}, NumNeighbors: 0},
			wantField: "num_neighbors",
			wantMsg:   "num_neighbors must be at least 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.query)
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&testQuery{ItemIDs: []int64{1}, NumNeighbors: 500})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "num_neighbors" {
		t.Errorf("Details[field] = %v", apiErr.Details["field"])
	}

	multi := ValidateStruct(&testQuery{Metric: "x"})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %#v, want 3 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "item_ids:") {
		t.Errorf("Message = %q, want per-field prefix", apiErr.Message)
	}
}
