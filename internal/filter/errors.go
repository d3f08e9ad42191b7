// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package filter

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned until the embedding store has published its first
// snapshot.
var ErrNotReady = errors.New("embeddings are not loaded yet")

// ParseError reports an item id token that is not a base-10 int64.
type ParseError struct {
	Token    string
	Position int // zero-based index in the comma-separated list
	Err      error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("item_ids[%d] is empty", e.Position)
	}
	return fmt.Sprintf("item_ids[%d] %q is not an integer id", e.Position, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TooManyItemsError is returned when a request names more ids than the
// configured maximum.
type TooManyItemsError struct {
	Count int
	Max   int
}

func (e *TooManyItemsError) Error() string {
	return fmt.Sprintf("item_ids has %d entries, at most %d are allowed", e.Count, e.Max)
}
