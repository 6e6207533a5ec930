// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/segment/storage"
)

// newTestRepo builds a dataset with two behavioral groups of customers
// plus one extreme outlier customer.
func newTestRepo(t *testing.T) *dataset.Repository {
	t.Helper()
	root := t.TempDir()

	products := filepath.Join(root, "Products")
	if err := os.MkdirAll(products, 0o750); err != nil {
		t.Fatal(err)
	}
	pc := "product|category\n"
	for i := 1; i <= 20; i++ {
		pc += fmt.Sprintf("P%d|C%d\n", i, (i%4)+1)
	}
	if err := os.WriteFile(filepath.Join(products, "ProductCategory.csv"), []byte(pc), 0o600); err != nil {
		t.Fatal(err)
	}
	cats := "C1|Dairy\nC2|Bakery\nC3|Produce\nC4|Frozen\n"
	if err := os.WriteFile(filepath.Join(products, "Categories.csv"), []byte(cats), 0o600); err != nil {
		t.Fatal(err)
	}

	txDir := filepath.Join(root, "Transactions")
	if err := os.MkdirAll(txDir, 0o750); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	// Light shoppers: 2 transactions, 1 item each.
	for c := 0; c < 6; c++ {
		for tx := 0; tx < 2; tx++ {
			fmt.Fprintf(&sb, "2024-03-%02d|S1|L%d|P%d\n", tx+1, c, c+1)
		}
	}
	// Heavy shoppers: 8 transactions, 5 items each.
	for c := 0; c < 6; c++ {
		for tx := 0; tx < 8; tx++ {
			fmt.Fprintf(&sb, "2024-03-%02d|S1|H%d|P1 P2 P%d P%d P%d\n",
				tx+1, c, 5+c, 11+c, 17+((c+tx)%4))
		}
	}
	// One extreme outlier: 40 transactions, 12 items each.
	for tx := 0; tx < 40; tx++ {
		items := make([]string, 12)
		for i := range items {
			items[i] = fmt.Sprintf("P%d", (i+tx)%20+1)
		}
		fmt.Fprintf(&sb, "2024-03-%02d|S1|WHALE|%s\n", tx%28+1, strings.Join(items, " "))
	}

	if err := os.WriteFile(filepath.Join(txDir, "tx.csv"), []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return dataset.NewRepository(root, zerolog.Nop())
}

func newTestSegmenter(t *testing.T, repo *dataset.Repository) *Segmenter {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewSegmenter(repo, DefaultConfig(), store, zerolog.Nop())
}

func TestSegmentBasic(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)

	// IQR filtering removes the whale, leaving the two clean groups.
	m, err := seg.Segment(context.Background(), 2, true)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if m.K != 2 || len(m.Centroids) != 2 || len(m.Profiles) != 2 {
		t.Fatalf("model shape: K=%d centroids=%d profiles=%d", m.K, len(m.Centroids), len(m.Profiles))
	}
	if len(m.Assignments) != 12 {
		t.Errorf("assignments = %d, want 12 clustered customers", len(m.Assignments))
	}
	total := 0
	for _, n := range m.ClusterSizes {
		total += n
	}
	if total != 12 {
		t.Errorf("cluster sizes sum to %d, want 12", total)
	}

	// Heavy shoppers cluster together, apart from light shoppers.
	if m.Assignments["H0"] != m.Assignments["H5"] {
		t.Error("heavy shoppers split across clusters")
	}
	if m.Assignments["L0"] == m.Assignments["H0"] {
		t.Error("light and heavy shoppers share a cluster")
	}
}

func TestSegmentDeterministic(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)
	ctx := context.Background()

	a, err := seg.Segment(ctx, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	seg.Invalidate()
	b, err := seg.Segment(ctx, 3, false)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Centroids, b.Centroids) {
		t.Error("centroids differ across runs with fixed seed and data")
	}
	if !reflect.DeepEqual(a.Assignments, b.Assignments) {
		t.Error("assignments differ across runs with fixed seed and data")
	}
}

func TestSegmentOutlierFiltering(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)
	ctx := context.Background()

	unfiltered, err := seg.Segment(ctx, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := seg.Segment(ctx, 2, true)
	if err != nil {
		t.Fatal(err)
	}

	if filtered.OutlierCount == 0 {
		t.Fatal("IQR filtering removed no customers despite an injected whale")
	}
	found := false
	for _, id := range filtered.OutlierIDs {
		if id == "WHALE" {
			found = true
		}
	}
	if !found {
		t.Errorf("OutlierIDs = %v, want WHALE included", filtered.OutlierIDs)
	}
	if _, assigned := filtered.Assignments["WHALE"]; assigned {
		t.Error("outlier customer still assigned to a cluster")
	}
	// Partition: outliers + assigned == all customers.
	if filtered.OutlierCount+len(filtered.Assignments) != 13 {
		t.Errorf("outliers %d + assigned %d != 13", filtered.OutlierCount, len(filtered.Assignments))
	}

	// Removing the whale must move at least one centroid noticeably.
	moved := false
	for _, fc := range filtered.Centroids {
		nearest := math.Inf(1)
		for _, uc := range unfiltered.Centroids {
			if d := sqDist(fc, uc); d < nearest {
				nearest = d
			}
		}
		if nearest > 1.0 {
			moved = true
		}
	}
	if !moved {
		t.Error("centroids unchanged by outlier removal on data with an injected whale")
	}
}

func TestSegmentParameterValidation(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		k    int
	}{
		{"zero k", 0},
		{"negative k", -3},
		{"k beyond customers", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seg.Segment(ctx, tt.k, false)
			var ipe *dataset.InvalidParameterError
			if !errors.As(err, &ipe) {
				t.Errorf("Segment(k=%d) error = %v, want *InvalidParameterError", tt.k, err)
			}
		})
	}
}

func TestSegmentCachedUntilRefresh(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)
	ctx := context.Background()

	a, err := seg.Segment(ctx, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := seg.Segment(ctx, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second Segment call retrained instead of reusing the cached model")
	}

	if err := repo.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	c, err := seg.Segment(ctx, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("model not retrained after repository refresh")
	}
	if c.Generation != a.Generation+1 {
		t.Errorf("generation = %d, want %d", c.Generation, a.Generation+1)
	}
}

func TestModelPersistenceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	seg := newTestSegmenter(t, repo)

	trained, err := seg.Segment(context.Background(), 2, true)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := seg.LoadPersisted()
	if err != nil {
		t.Fatalf("LoadPersisted() error: %v", err)
	}
	if !reflect.DeepEqual(restored.Centroids, trained.Centroids) {
		t.Error("persisted centroids differ from trained centroids")
	}
	if !reflect.DeepEqual(restored.Scaler, trained.Scaler) {
		t.Error("persisted scaling parameters differ from trained ones")
	}
	if restored.K != trained.K || restored.OutlierCount != trained.OutlierCount {
		t.Errorf("persisted model = %+v", restored)
	}
}
