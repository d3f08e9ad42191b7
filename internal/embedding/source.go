// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/diversityfilter/internal/config"
)

// Source yields the raw bytes of an embedding artifact.
type Source interface {
	// Name identifies the artifact in logs, errors and status output.
	Name() string
	// Open returns a reader over the whole artifact. A missing artifact is
	// reported as a *LoadError with Kind ReasonMissing.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// NewSource builds the source described by cfg: an S3 object for s3:// paths,
// a local file otherwise.
func NewSource(cfg *config.EmbeddingsConfig) (Source, error) {
	if cfg.IsRemote() {
		return NewS3Source(cfg.Path, &cfg.S3)
	}
	return NewFileSource(cfg.Path), nil
}

// FileSource reads an artifact from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource. Relative paths are resolved against the
// working directory at construction.
func NewFileSource(path string) *FileSource {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string { return s.path }

// Open opens the file.
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: s.path, Kind: ReasonCanceled, Err: err}
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Source: s.path, Kind: ReasonMissing, Err: err}
	}
	if err != nil {
		return nil, &LoadError{Source: s.path, Kind: ReasonSource, Err: err}
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		_ = f.Close()
		return nil, loadErrorf(s.path, ReasonSource, "%s is a directory", s.path)
	}
	return f, nil
}

// splitS3URL turns s3://bucket/key into its parts.
func splitS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3:// url: %q", raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.Trim(key, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url must look like s3://bucket/key: %q", raw)
	}
	return bucket, key, nil
}
