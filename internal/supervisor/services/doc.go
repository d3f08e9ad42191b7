// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

/*
Package services adapts the long-running parts of diversityfilter to
suture.Service so the supervisor tree can start, restart and stop them.

# Services

RefreshService (data layer):
  - Reloads the embedding artifact every embeddings.refresh_interval
  - Runs one refresh immediately at start when refresh_on_startup is set
  - Trigger queues an extra refresh; concurrent requests coalesce
  - A failed refresh is logged and counted, never returned

WatchService (data layer, local artifacts only):
  - fsnotify on the artifact's directory
  - Debounces bursts of events and rate limits triggers with x/time/rate

HTTPServerService (api layer):
  - Runs ListenAndServe in a goroutine
  - Graceful Shutdown with its own timeout when the tree stops

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

All services implement fmt.Stringer; suture uses the name in its event log.
*/
package services
