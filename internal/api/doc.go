// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

/*
Package api provides the HTTP layer of the diversity filter.

Routes:

	GET  /diversity/?item_ids=1,2,3&diversity_metric=knn&num_neighbors=5
	POST /diversity/                    {"item_ids":[1,2,3],"diversity_metric":"kde"}
	GET  /api/v1/health                 overall status, always 200
	GET  /api/v1/health/live            liveness probe
	GET  /api/v1/health/ready           503 until the first snapshot is published
	GET  /api/v1/embeddings/status      active snapshot and last refresh attempt
	POST /api/v1/embeddings/refresh     reload the artifact now
	GET  /metrics                       Prometheus
	GET  /swagger/*                     OpenAPI UI (server.swagger_enabled)

GET /diversity/ answers with the bare [reject, diversity] pair, or null when
none of the ids has an embedding; format=envelope asks for the full decision
instead. POST /diversity/ defaults to the envelope and accepts format=tuple.
Both set X-Diversity-Outcome. Every other response, errors included, uses the
models.APIResponse envelope.

Error codes:

	INVALID_ITEM_IDS       400  item_ids has a non-integer or empty token
	UNKNOWN_METRIC         400  diversity_metric is not kde or knn
	INVALID_NEIGHBORS      400  knn with num_neighbors below 1
	VALIDATION_ERROR       400  too many ids, bad num_neighbors or format
	RATE_LIMIT_EXCEEDED    429  per-IP limit from go-chi/httprate
	EMBEDDINGS_NOT_READY   503  no snapshot loaded yet (Retry-After set)
	REFRESH_IN_PROGRESS    409  manual refresh collided with a running one
	REFRESH_FAILED         502  the artifact could not be loaded

Middleware order: RequestID, RealIP, Recoverer, CORS and AccessLog run on
every route; route groups add their rate limiter, Prometheus instrumentation
and security headers.

Usage:

	store := embedding.NewStore(loader)
	handler := api.NewHandler(store, filter.New(store, filterCfg, logger), api.HandlerConfig{Version: version})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security), cfg.Server.SwaggerEnabled)
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
*/
package api
