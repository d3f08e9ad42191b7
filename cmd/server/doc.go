// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

/*
Package main is the entry point for the diversity filter server.

The server answers one question over HTTP: given a group of item ids, is the
group diverse enough? Every item has a precomputed embedding; the service
scores how unique each item is within the group (kde or knn) and rejects the
group when the mean uniqueness is strictly below the fixed threshold of 0.5.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("diversityfilter")
	├── DataSupervisor ("data-layer")
	│   ├── Embedding refresh (interval + on demand)
	│   └── Artifact watcher (fsnotify, local paths only)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Embedding source: local file or s3://bucket/key (MinIO client)
 4. Snapshot cache: BadgerDB warm start (optional)
 5. Store: restore the cached snapshot if any
 6. Filter: evaluator plus result cache
 7. Supervisor Tree: refresh, watcher and HTTP services
 8. HTTP Server: Chi router with middleware stack

The server does not wait for the first load. Until a snapshot is published,
/diversity/ answers 503 EMBEDDINGS_NOT_READY and /api/v1/health/ready answers
503, so orchestrators hold traffic back.

# Configuration

Loaded via Koanf v2 (highest priority wins):
  - Environment variables (EMBEDDINGS_PATH, UPDATE_INTERVAL, HTTP_PORT, ...)
  - Config file (CONFIG_PATH, ./config.yaml, /etc/diversityfilter/config.yaml)
  - Built-in defaults

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the watcher
and the refresh loop, then the HTTP server drains in-flight requests within
server.shutdown_timeout. The snapshot cache is closed last.

# Example Usage

Local artifact, hot reloaded on change:

	export EMBEDDINGS_PATH=/data/item_embeddings.json.gz
	export UPDATE_INTERVAL=30
	./diversityfilter

Artifact in MinIO with a warm-start cache:

	export EMBEDDINGS_PATH=s3://models/item_embeddings.csv
	export S3_ENDPOINT=minio:9000
	export S3_ACCESS_KEY=...
	export S3_SECRET_KEY=...
	export EMBEDDINGS_CACHE_ENABLED=true
	./diversityfilter
*/
package main
