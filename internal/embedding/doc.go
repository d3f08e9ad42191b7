// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

/*
Package embedding loads item embeddings from an artifact and serves them from
an immutable, atomically swapped snapshot.

# Snapshots

A Snapshot maps item ids to vectors of one fixed dimension. It is never
mutated after publication. Store.Snapshot returns the current one with a
single atomic load, so a request that reads it once sees a consistent view
for its whole lifetime even while a refresh publishes a newer one.

# Refresh

Store.Refresh loads the artifact through a Loader and publishes the result.
A failed load returns a *LoadError and leaves the previous snapshot in place.
A load canceled through its context never publishes. Only one refresh runs at
a time; a concurrent caller gets ErrRefreshInProgress instead of waiting.
An artifact whose checksum matches the active snapshot is not republished.

# Artifacts

Sources are local files or s3:// objects (MinIO compatible, guarded by a
circuit breaker). Two formats are understood:

	JSON  {"101": [0.1, 0.2], "102": [0.3, 0.4]}
	CSV   101,0.1,0.2
	      102,0.3,0.4

Either may be gzip-compressed; compression is detected from the content.
The format is taken from configuration or, in auto mode, from the name with
any .gz suffix removed.

# Warm start

When a SnapshotCache is attached, every published snapshot is written to
BadgerDB and Store.Restore can publish it again after a restart, before the
first artifact load completes.
*/
package embedding
