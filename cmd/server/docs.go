// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

// @title Diversity Filter API
// @version 1.0
// @description Accepts or rejects a group of items by how diverse their embeddings are.
// @description
// @description ## Decision
// @description
// @description Each item's uniqueness within the group is scored with a Gaussian KDE
// @description (bandwidth 1) or as the mean distance to its K nearest neighbors. The group
// @description diversity is the mean uniqueness; the group is rejected when it is strictly
// @description below the fixed threshold of 0.5. Ids without an embedding are skipped.
// @description
// @description ## Rate Limiting
// @description
// @description Per-IP limits apply to /diversity/ (configurable, default 600/min) and to
// @description the refresh endpoint (10/min).
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "INVALID_ITEM_IDS",
// @description     "message": "invalid item id \"abc\" at position 1",
// @description     "details": {"token": "abc", "position": 1}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-03-01T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/diversityfilter/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /
// @schemes http https
//
// @tag.name Diversity
// @tag.description Group diversity decisions
//
// @tag.name Health
// @tag.description Liveness and readiness probes
//
// @tag.name Embeddings
// @tag.description Embedding snapshot status and manual refresh
package main

// Regenerates ../../docs from the annotations above and on the handlers.
//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init --dir .,../../internal/api,../../internal/models --generalInfo docs.go --output ../../docs --outputTypes go --parseInternal
