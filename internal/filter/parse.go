// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package filter

import (
	"strconv"
	"strings"
)

// ParseItemIDs parses a comma-separated list of integer ids. Surrounding
// whitespace is ignored; an empty token is an error. Order and duplicates are
// preserved.
func ParseItemIDs(raw string) ([]int64, error) {
	tokens := strings.Split(raw, ",")
	ids := make([]int64, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, &ParseError{Token: tok, Position: i}
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, &ParseError{Token: tok, Position: i, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
