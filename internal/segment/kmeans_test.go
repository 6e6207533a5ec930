// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import (
	"context"
	"math"
	"reflect"
	"testing"
)

// twoBlobs returns well-separated clusters around (0,0) and (10,10).
func twoBlobs() [][]float64 {
	return [][]float64{
		{0.1, 0.2}, {0.3, 0.1}, {-0.2, 0.0}, {0.0, -0.3}, {0.2, 0.2},
		{10.1, 10.2}, {9.8, 10.0}, {10.3, 9.7}, {10.0, 10.1}, {9.9, 9.8},
	}
}

func TestKmeansSeparatesBlobs(t *testing.T) {
	rows := twoBlobs()
	res, err := kmeans(context.Background(), rows, 2, 10, 300, 42)
	if err != nil {
		t.Fatal(err)
	}

	// All points in the first blob share a label, likewise the second,
	// and the two labels differ.
	first := res.Labels[0]
	for i := 1; i < 5; i++ {
		if res.Labels[i] != first {
			t.Errorf("point %d label %d, want %d", i, res.Labels[i], first)
		}
	}
	second := res.Labels[5]
	if second == first {
		t.Error("blobs assigned to the same cluster")
	}
	for i := 6; i < 10; i++ {
		if res.Labels[i] != second {
			t.Errorf("point %d label %d, want %d", i, res.Labels[i], second)
		}
	}

	// Each centroid sits near a blob center.
	for _, c := range res.Centroids {
		nearOrigin := math.Hypot(c[0], c[1]) < 1
		nearTen := math.Hypot(c[0]-10, c[1]-10) < 1
		if !nearOrigin && !nearTen {
			t.Errorf("centroid %v far from both blob centers", c)
		}
	}
}

func TestKmeansDeterministicWithSeed(t *testing.T) {
	rows := twoBlobs()

	a, err := kmeans(context.Background(), rows, 2, 10, 300, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := kmeans(context.Background(), rows, 2, 10, 300, 7)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Centroids, b.Centroids) {
		t.Error("centroids differ across runs with the same seed")
	}
	if !reflect.DeepEqual(a.Labels, b.Labels) {
		t.Error("labels differ across runs with the same seed")
	}
	if a.WCSS != b.WCSS {
		t.Errorf("WCSS differs: %v vs %v", a.WCSS, b.WCSS)
	}
}

func TestKmeansRestartsNeverWorsenWCSS(t *testing.T) {
	rows := twoBlobs()

	single, err := kmeans(context.Background(), rows, 2, 1, 300, 3)
	if err != nil {
		t.Fatal(err)
	}
	many, err := kmeans(context.Background(), rows, 2, 20, 300, 3)
	if err != nil {
		t.Fatal(err)
	}

	if many.WCSS > single.WCSS+tolerance {
		t.Errorf("more restarts worsened WCSS: %v > %v", many.WCSS, single.WCSS)
	}
}

func TestKmeansKEqualsN(t *testing.T) {
	rows := [][]float64{{1, 1}, {5, 5}, {9, 9}}
	res, err := kmeans(context.Background(), rows, 3, 5, 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.WCSS > tolerance {
		t.Errorf("WCSS = %v, want 0 when every point is its own cluster", res.WCSS)
	}
}

func TestKmeansContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := kmeans(ctx, twoBlobs(), 2, 10, 300, 1); err == nil {
		t.Error("kmeans with cancelled context = nil error, want ctx.Err()")
	}
}

func TestDistinctRows(t *testing.T) {
	rows := [][]float64{{1, 2}, {1, 2}, {3, 4}}
	if got := distinctRows(rows); got != 2 {
		t.Errorf("distinctRows = %d, want 2", got)
	}
}
