// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import "strings"

// profileCentroids derives a human-readable profile per cluster from the
// centroid values alone. The description is a pure function of each
// centroid's position relative to the other centroids (above or below
// the cross-cluster median per feature), never of the cluster index:
// index-to-meaning is not stable across training runs, so anything keyed
// by index would silently mislabel clusters.
//
// featureNames follows the clustering feature order; the first four are
// always frequency, total_items, distinct_products, distinct_categories.
func profileCentroids(centroids [][]float64, featureNames []string) []string {
	if len(centroids) == 0 {
		return nil
	}

	medians := make([]float64, len(featureNames))
	column := make([]float64, len(centroids))
	for j := range featureNames {
		for i, c := range centroids {
			column[i] = c[j]
		}
		medians[j] = median(column)
	}

	above := func(c []float64, feature string) bool {
		for j, name := range featureNames {
			if name == feature {
				return c[j] > medians[j]
			}
		}
		return false
	}

	profiles := make([]string, len(centroids))
	for i, c := range centroids {
		highFreq := above(c, "frequency")
		highVolume := above(c, "total_items")
		highProducts := above(c, "distinct_products")
		highCategories := above(c, "distinct_categories")

		var parts []string
		switch {
		case highFreq && highVolume && highProducts:
			parts = append(parts, "VIP: high frequency, high volume")
		case highFreq:
			parts = append(parts, "high frequency")
		default:
			parts = append(parts, "low frequency")
		}
		if highVolume && !(highFreq && highProducts) {
			parts = append(parts, "high volume")
		}
		if highProducts {
			parts = append(parts, "broad product range")
		}
		if highCategories {
			parts = append(parts, "wide category mix")
		}

		profiles[i] = strings.Join(parts, ", ")
	}
	return profiles
}
