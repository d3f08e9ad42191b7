// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Embeddings.RefreshInterval != 10*time.Second {
		t.Errorf("Embeddings.RefreshInterval = %v, want 10s", cfg.Embeddings.RefreshInterval)
	}
	if cfg.Embeddings.Format != "auto" {
		t.Errorf("Embeddings.Format = %q, want auto", cfg.Embeddings.Format)
	}
	if !cfg.Embeddings.RefreshOnStartup {
		t.Error("Embeddings.RefreshOnStartup should be true by default")
	}
	if cfg.Embeddings.CacheEnabled {
		t.Error("Embeddings.CacheEnabled should be false by default")
	}
	if cfg.Diversity.DefaultMetric != "kde" {
		t.Errorf("Diversity.DefaultMetric = %q, want kde", cfg.Diversity.DefaultMetric)
	}
	if cfg.Diversity.DefaultNeighbors != 5 {
		t.Errorf("Diversity.DefaultNeighbors = %d, want 5", cfg.Diversity.DefaultNeighbors)
	}
	if cfg.Diversity.KDEBandwidth != 1.0 {
		t.Errorf("Diversity.KDEBandwidth = %v, want 1.0", cfg.Diversity.KDEBandwidth)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"EMBEDDINGS_PATH", "embeddings.path"},
		{"embeddings_path", "embeddings.path"},
		{"UPDATE_INTERVAL", "embeddings.refresh_interval"},
		{"EMBEDDINGS_REFRESH_INTERVAL", "embeddings.refresh_interval"},
		{"S3_ENDPOINT", "embeddings.s3.endpoint"},
		{"DIVERSITY_THRESHOLD", ""},
		{"HTTP_PORT", "server.port"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_Env(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDDINGS_PATH", "/data/embeddings.json")
	t.Setenv("UPDATE_INTERVAL", "30")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DIVERSITY_DEFAULT_METRIC", "knn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Embeddings.Path != "/data/embeddings.json" {
		t.Errorf("Embeddings.Path = %q", cfg.Embeddings.Path)
	}
	if cfg.Embeddings.RefreshInterval != 30*time.Second {
		t.Errorf("legacy UPDATE_INTERVAL not applied: %v", cfg.Embeddings.RefreshInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Diversity.DefaultMetric != "knn" {
		t.Errorf("DefaultMetric = %q, want knn", cfg.Diversity.DefaultMetric)
	}
}

func TestLoadWithKoanf_DurationString(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDDINGS_PATH", "/data/embeddings.json")
	t.Setenv("EMBEDDINGS_REFRESH_INTERVAL", "2m")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Embeddings.RefreshInterval != 2*time.Minute {
		t.Errorf("RefreshInterval = %v, want 2m", cfg.Embeddings.RefreshInterval)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
embeddings:
  path: s3://models/items/embeddings.json.gz
  s3:
    endpoint: minio:9000
    use_ssl: false
diversity:
  threshold: 0.75
  max_items: 50
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9191")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if !cfg.Embeddings.IsRemote() {
		t.Error("expected remote embeddings path")
	}
	if cfg.Embeddings.S3.UseSSL {
		t.Error("S3.UseSSL should come from the file")
	}
	if cfg.Diversity.MaxItems != 50 {
		t.Errorf("MaxItems = %d, want 50", cfg.Diversity.MaxItems)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("env should win over file: Port = %d", cfg.Server.Port)
	}
	if cfg.Embeddings.RefreshInterval != 10*time.Second {
		t.Errorf("default should survive: RefreshInterval = %v", cfg.Embeddings.RefreshInterval)
	}
}

func TestLoadWithKoanf_MissingPath(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDDINGS_PATH", "")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected error when EMBEDDINGS_PATH is empty")
	}
}
