// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import (
	"context"
	"math"
	"math/rand"
)

// kmeansResult is the outcome of one full k-means fit (best of all
// restarts).
type kmeansResult struct {
	Centroids  [][]float64
	Labels     []int
	WCSS       float64
	Iterations int
}

// kmeans runs Lloyd's method with the given number of restarts and keeps
// the run with the lowest within-cluster sum of squares. Determinism
// follows from the seeded random source: the same data, k, restarts, and
// seed always produce the same result. Iteration caps, not wall-clock
// timeouts, bound the work.
func kmeans(ctx context.Context, rows [][]float64, k, restarts, maxIterations int, seed int64) (*kmeansResult, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducibility matters here, not cryptographic strength

	var best *kmeansResult
	for run := 0; run < restarts; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := lloyd(rows, k, maxIterations, rng)
		if best == nil || res.WCSS < best.WCSS {
			best = res
		}
	}
	return best, nil
}

// lloyd performs one k-means run from a fresh random initialization.
func lloyd(rows [][]float64, k, maxIterations int, rng *rand.Rand) *kmeansResult {
	dims := len(rows[0])
	centroids := initCentroids(rows, k, rng)
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = -1
	}

	iterations := 0
	for ; iterations < maxIterations; iterations++ {
		changed := false
		for i, row := range rows {
			nearest := nearestCentroid(row, centroids)
			if nearest != labels[i] {
				labels[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroids as the mean of assigned points. A cluster
		// that lost all its points keeps its previous centroid.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, row := range rows {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < dims; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return &kmeansResult{
		Centroids:  centroids,
		Labels:     labels,
		WCSS:       wcss(rows, centroids, labels),
		Iterations: iterations,
	}
}

// initCentroids picks k distinct rows as starting centroids.
func initCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(rows))
	centroids := make([][]float64, 0, k)
	seen := make(map[string]struct{}, k)

	for _, idx := range perm {
		key := rowKey(rows[idx])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c := make([]float64, len(rows[idx]))
		copy(c, rows[idx])
		centroids = append(centroids, c)
		if len(centroids) == k {
			break
		}
	}
	return centroids
}

// rowKey is a hashable identity for detecting duplicate points during
// initialization.
func rowKey(row []float64) string {
	b := make([]byte, 0, len(row)*8)
	for _, v := range row {
		bits := math.Float64bits(v)
		for s := 0; s < 64; s += 8 {
			b = append(b, byte(bits>>s))
		}
	}
	return string(b)
}

// nearestCentroid returns the index of the closest centroid by squared
// Euclidean distance. Ties break toward the lower index, keeping
// assignment deterministic.
func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		d := sqDist(row, centroid)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}

// wcss is the within-cluster sum of squared distances, the objective
// minimized across restarts.
func wcss(rows [][]float64, centroids [][]float64, labels []int) float64 {
	var total float64
	for i, row := range rows {
		total += sqDist(row, centroids[labels[i]])
	}
	return total
}

// distinctRows counts distinct points, used to validate that k clusters
// are actually achievable.
func distinctRows(rows [][]float64) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[rowKey(row)] = struct{}{}
	}
	return len(seen)
}
