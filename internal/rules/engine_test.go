// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package rules

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
)

func writeCatalogFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestRepo builds a small on-disk dataset and returns a repository
// over it.
func newTestRepo(t *testing.T) *dataset.Repository {
	t.Helper()
	root := t.TempDir()

	products := filepath.Join(root, "Products")
	if err := os.MkdirAll(products, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(products, "ProductCategory.csv"),
		[]byte("product|category\nA|C1\nB|C1\nC|C2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(products, "Categories.csv"),
		[]byte("C1|Dairy\nC2|Bakery\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	txDir := filepath.Join(root, "Transactions")
	if err := os.MkdirAll(txDir, 0o750); err != nil {
		t.Fatal(err)
	}
	tx := "2024-03-01|S1|C100|A B C\n" +
		"2024-03-02|S1|C101|A B\n" +
		"2024-03-03|S1|C102|A C\n" +
		"2024-03-04|S1|C103|B C\n" +
		"2024-03-05|S1|C104|A B C\n"
	if err := os.WriteFile(filepath.Join(txDir, "tx.csv"), []byte(tx), 0o600); err != nil {
		t.Fatal(err)
	}

	return dataset.NewRepository(root, zerolog.Nop())
}

func TestEngineLazyCaching(t *testing.T) {
	repo := newTestRepo(t)
	eng := NewEngine(repo, DefaultConfig(), zerolog.Nop())
	ctx := context.Background()

	if eng.Fresh() {
		t.Error("Fresh() = true before first access")
	}

	first, err := eng.Rules(ctx)
	if err != nil {
		t.Fatalf("Rules() error: %v", err)
	}
	if !eng.Fresh() {
		t.Error("Fresh() = false after mining")
	}

	second, err := eng.Rules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second access re-mined instead of hitting the cache")
	}
}

func TestEngineInvalidatedByRefresh(t *testing.T) {
	repo := newTestRepo(t)
	eng := NewEngine(repo, DefaultConfig(), zerolog.Nop())
	ctx := context.Background()

	first, err := eng.Rules(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if eng.Fresh() {
		t.Error("Fresh() = true after refresh; cache must be stale")
	}

	second, err := eng.Rules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.Generation != first.Generation+1 {
		t.Errorf("generation = %d, want %d", second.Generation, first.Generation+1)
	}

	// Unchanged sources mine to an identical rule set.
	if !reflect.DeepEqual(first.Rules, second.Rules) {
		t.Error("rule sets differ across refreshes of unchanged sources")
	}
}

func TestEngineInitialize(t *testing.T) {
	repo := newTestRepo(t)
	eng := NewEngine(repo, DefaultConfig(), zerolog.Nop())

	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if !eng.Fresh() {
		t.Error("Fresh() = false after Initialize")
	}
}

func TestRuleSetByAntecedent(t *testing.T) {
	repo := newTestRepo(t)
	eng := NewEngine(repo, DefaultConfig(), zerolog.Nop())

	rs, err := eng.Rules(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	forA := rs.ByAntecedent("A")
	if len(forA) == 0 {
		t.Fatal("no rules with antecedent A")
	}
	for _, r := range forA {
		if r.Antecedent != "A" {
			t.Errorf("ByAntecedent(A) returned rule %s->%s", r.Antecedent, r.Consequent)
		}
	}
	for i := 1; i < len(forA); i++ {
		if forA[i].Lift > forA[i-1].Lift {
			t.Error("ByAntecedent result not sorted by lift descending")
		}
	}
}

func TestRuleSetFiltered(t *testing.T) {
	rs := &RuleSet{Rules: []Rule{
		{Antecedent: "A", Consequent: "B", Lift: 3.0},
		{Antecedent: "A", Consequent: "C", Lift: 1.5},
		{Antecedent: "B", Consequent: "C", Lift: 0.8},
	}}
	rs.buildIndex()

	got := rs.Filtered(1.0, 0)
	if len(got) != 2 {
		t.Fatalf("Filtered(1.0, 0) = %d rules, want 2", len(got))
	}

	limited := rs.Filtered(0, 1)
	if len(limited) != 1 || limited[0].Lift != 3.0 {
		t.Errorf("Filtered(0, 1) = %+v, want the top-lift rule only", limited)
	}
}
