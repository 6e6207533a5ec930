// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import "sort"

// iqrFactor is the standard Tukey fence multiplier.
const iqrFactor = 1.5

// filterIQR removes rows with any feature outside [Q1-1.5*IQR,
// Q3+1.5*IQR], computed per feature over all rows. It returns the kept
// rows and IDs plus the IDs that were excluded; removed + kept always
// partition the input.
func filterIQR(rows [][]float64, ids []string) (kept [][]float64, keptIDs, removedIDs []string) {
	if len(rows) == 0 {
		return nil, nil, nil
	}

	dims := len(rows[0])
	lo := make([]float64, dims)
	hi := make([]float64, dims)

	column := make([]float64, len(rows))
	for j := 0; j < dims; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		q1, q3 := quartiles(column)
		iqr := q3 - q1
		lo[j] = q1 - iqrFactor*iqr
		hi[j] = q3 + iqrFactor*iqr
	}

	for i, row := range rows {
		outlier := false
		for j, v := range row {
			if v < lo[j] || v > hi[j] {
				outlier = true
				break
			}
		}
		if outlier {
			removedIDs = append(removedIDs, ids[i])
		} else {
			kept = append(kept, row)
			keptIDs = append(keptIDs, ids[i])
		}
	}
	return kept, keptIDs, removedIDs
}

// quartiles returns Q1 and Q3 using linear interpolation between order
// statistics. The input slice is not modified.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

// percentile computes the p-th percentile of sorted values, 0 <= p <= 1.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// median of unsorted values, via the same interpolation.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.5)
}
