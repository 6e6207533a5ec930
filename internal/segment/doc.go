// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package segment partitions customers into behavioral groups.
//
// The pipeline is: stack customer feature vectors into a matrix,
// optionally drop IQR outliers, standardize, run k-means (Lloyd's
// method, multiple seeded restarts, best WCSS wins), then invert the
// standardization so centroids are reported in original feature units.
// Cluster profiles are derived from centroid rankings, never from
// cluster indices, because index-to-meaning is not stable across runs.
package segment
