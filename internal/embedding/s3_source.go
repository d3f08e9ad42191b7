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
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomtom215/diversityfilter/internal/config"
)

// S3Source reads an artifact from S3 or MinIO. Fetches go through a circuit
// breaker; a missing object does not count as a breaker failure.
type S3Source struct {
	client  *minio.Client
	bucket  string
	key     string
	name    string
	breaker *fetchBreaker[*minio.Object]
}

// NewS3Source creates a source for rawURL (s3://bucket/key).
func NewS3Source(rawURL string, cfg *config.S3Config) (*S3Source, error) {
	bucket, key, err := splitS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", cfg.Endpoint, err)
	}
	return newS3SourceWithClient(client, bucket, key), nil
}

func newS3SourceWithClient(client *minio.Client, bucket, key string) *S3Source {
	name := "s3://" + bucket + "/" + key
	settings := defaultBreakerSettings("embeddings-s3")
	settings.isSuccessful = func(err error) bool {
		return err == nil || isMissingObject(err) || errors.Is(err, context.Canceled)
	}
	return &S3Source{
		client:  client,
		bucket:  bucket,
		key:     key,
		name:    name,
		breaker: newFetchBreaker[*minio.Object](settings),
	}
}

// Name returns the s3:// url.
func (s *S3Source) Name() string { return s.name }

// Open fetches the object. GetObject is lazy, so Stat forces the request and
// surfaces a missing key before any decoding starts.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.breaker.execute(func() (*minio.Object, error) {
		obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		if _, err := obj.Stat(); err != nil {
			_ = obj.Close()
			return nil, err
		}
		return obj, nil
	})
	switch {
	case err == nil:
		return obj, nil
	case isMissingObject(err):
		return nil, &LoadError{Source: s.name, Kind: ReasonMissing, Err: err}
	case ctx.Err() != nil:
		return nil, &LoadError{Source: s.name, Kind: ReasonCanceled, Err: ctx.Err()}
	default:
		return nil, &LoadError{Source: s.name, Kind: ReasonSource, Err: fmt.Errorf("fetch object: %w", err)}
	}
}

func isMissingObject(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound
}
