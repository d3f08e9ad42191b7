// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/blake2b"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Loader turns a Source into a validated Snapshot.
type Loader struct {
	source Source
	format Format
	now    func() time.Time
}

// NewLoader creates a loader. FormatAuto infers the format from the source
// name on every load.
func NewLoader(source Source, format Format) *Loader {
	return &Loader{source: source, format: format, now: time.Now}
}

// Source returns the artifact source.
func (l *Loader) Source() Source { return l.source }

// Load reads, decodes and validates the artifact. Every failure is a
// *LoadError. A canceled ctx aborts decoding and returns Kind ReasonCanceled.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	name := l.source.Name()

	format := l.format
	if format == "" || format == FormatAuto {
		detected, err := detectFormat(name)
		if err != nil {
			return nil, &LoadError{Source: name, Kind: ReasonFormat, Err: err}
		}
		format = detected
	}

	rc, err := l.source.Open(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, &LoadError{Source: name, Kind: ReasonSource, Err: err}
	}
	defer rc.Close()

	loadedAt := l.now()
	hash, _ := blake2b.New256(nil) // only errors on an oversized key

	// The checksum covers the bytes as stored, compressed or not.
	br := bufio.NewReaderSize(io.TeeReader(&ctxReader{ctx: ctx, r: rc}, hash), 64<<10)

	var body io.Reader = br
	if magic, _ := br.Peek(len(gzipMagic)); bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, classifyReadErr(ctx, name, fmt.Errorf("open gzip: %w", err))
		}
		defer gz.Close()
		body = gz
	}

	vectors, err := decode(ctx, body, format, name)
	if err != nil {
		return nil, err
	}
	// Drain so the checksum covers trailing bytes the decoder did not need.
	if _, err := io.Copy(io.Discard, br); err != nil {
		return nil, classifyReadErr(ctx, name, fmt.Errorf("read artifact: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: name, Kind: ReasonCanceled, Err: err}
	}

	return NewSnapshot(vectors, name, hex.EncodeToString(hash.Sum(nil)), loadedAt)
}
