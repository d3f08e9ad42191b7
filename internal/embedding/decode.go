// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Format is an artifact encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "", auto, json and csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown embeddings format %q", s)
	}
}

// detectFormat picks a format from an artifact name, ignoring .gz.
func detectFormat(name string) (Format, error) {
	base := strings.TrimSuffix(strings.ToLower(name), ".gz")
	switch {
	case strings.HasSuffix(base, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(base, ".csv"):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot infer format from %q; set the format explicitly", name)
	}
}

// ctxCheckEvery bounds how many records are decoded between context checks.
const ctxCheckEvery = 1024

// ctxReader fails reads once ctx is done, which aborts a decoder mid-stream.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func decode(ctx context.Context, r io.Reader, format Format, source string) (map[int64][]float64, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(ctx, r, source)
	case FormatCSV:
		return decodeCSV(ctx, r, source)
	default:
		return nil, loadErrorf(source, ReasonFormat, "unsupported format %q", format)
	}
}

// decodeJSON reads {"<id>": [floats...], ...}.
func decodeJSON(ctx context.Context, r io.Reader, source string) (map[int64][]float64, error) {
	var raw map[string][]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, classifyReadErr(ctx, source, fmt.Errorf("decode json: %w", err))
	}

	vectors := make(map[int64][]float64, len(raw))
	n := 0
	for key, vec := range raw {
		if n++; n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &LoadError{Source: source, Kind: ReasonCanceled, Err: err}
			}
		}
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, loadErrorf(source, ReasonFormat, "item id %q is not an integer", key)
		}
		vectors[id] = vec
	}
	return vectors, nil
}

// decodeCSV reads rows of id,v1,...,vD. A first row whose id column is not
// an integer is treated as a header. Lines starting with # are comments.
func decodeCSV(ctx context.Context, r io.Reader, source string) (map[int64][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	vectors := make(map[int64][]float64)
	for row := 1; ; row++ {
		if row%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &LoadError{Source: source, Kind: ReasonCanceled, Err: err}
			}
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classifyReadErr(ctx, source, fmt.Errorf("read csv: %w", err))
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, loadErrorf(source, ReasonFormat, "row %d: item id %q is not an integer", row, record[0])
		}
		if _, dup := vectors[id]; dup {
			return nil, loadErrorf(source, ReasonFormat, "row %d: duplicate item id %d", row, id)
		}

		vec := make([]float64, len(record)-1)
		for i, field := range record[1:] {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, loadErrorf(source, ReasonFormat, "row %d column %d: %q is not a number", row, i+2, field)
			}
			vec[i] = f
		}
		vectors[id] = vec
	}
	return vectors, nil
}

// classifyReadErr separates cancellation from malformed input.
func classifyReadErr(ctx context.Context, source string, err error) *LoadError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &LoadError{Source: source, Kind: ReasonCanceled, Err: ctxErr}
	}
	return &LoadError{Source: source, Kind: ReasonFormat, Err: err}
}

// validateVectors checks the snapshot invariants and returns the dimension.
func validateVectors(vectors map[int64][]float64, source string) (int, error) {
	if len(vectors) == 0 {
		return 0, loadErrorf(source, ReasonEmpty, "artifact contains no embeddings")
	}
	dim := -1
	var firstID int64
	for id, vec := range vectors {
		if len(vec) == 0 {
			return 0, loadErrorf(source, ReasonDimension, "item %d has an empty vector", id)
		}
		if dim < 0 {
			dim, firstID = len(vec), id
		} else if len(vec) != dim {
			return 0, loadErrorf(source, ReasonDimension, "item %d has dimension %d, item %d has %d", id, len(vec), firstID, dim)
		}
		for i, f := range vec {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return 0, loadErrorf(source, ReasonNonFinite, "item %d component %d is %v", id, i, f)
			}
		}
	}
	return dim, nil
}
