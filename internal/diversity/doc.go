// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

/*
Package diversity scores how spread out a group of item embeddings is and
turns that score into an accept/reject decision.

Each item in a group gets a uniqueness score from one of two estimators:

  - KDE: a Gaussian kernel density is fitted on the group itself (every point
    contributes to its own density). Uniqueness is the reciprocal of the
    density at the point, so items inside a tight cluster score low and
    isolated items score high. Densities are combined in log space with
    log-sum-exp.
  - KNN: uniqueness is the mean Euclidean distance from an item to its
    min(K, N-1) nearest other items. A group of one scores 0.

Group diversity is the mean uniqueness. A group is rejected when the diversity
is strictly below the threshold. An empty group is rejected with diversity 0
and no estimator runs.

Example:

	res, err := diversity.Evaluate(vectors, 0.5, diversity.MetricKNN, 5)
	if err != nil {
	    return err
	}
	if res.Reject {
	    // drop the recommendation slate
	}

The estimators are pure functions of their input and safe for concurrent use.
*/
package diversity
