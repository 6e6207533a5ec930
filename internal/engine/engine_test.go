// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/recommend"
	"github.com/cartfulhq/cartful/internal/report"
	"github.com/cartfulhq/cartful/internal/rules"
	"github.com/cartfulhq/cartful/internal/segment"
)

// newTestEngine wires a full facade over a small on-disk dataset: five
// baskets over products A, B, C in two categories.
func newTestEngine(t *testing.T) *Engine {
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

	repo := dataset.NewRepository(root, zerolog.Nop())
	ruleEngine := rules.NewEngine(repo, rules.DefaultConfig(), zerolog.Nop())
	segmenter := segment.NewSegmenter(repo, segment.DefaultConfig(), nil, zerolog.Nop())
	recommender := recommend.NewService(repo, ruleEngine, zerolog.Nop())
	reports := report.NewWriter(filepath.Join(root, "results"), zerolog.Nop())

	return New(repo, ruleEngine, segmenter, recommender, reports,
		Options{DefaultK: 2}, zerolog.Nop())
}

func TestExecutiveSummary(t *testing.T) {
	eng := newTestEngine(t)

	sum, err := eng.ExecutiveSummary(context.Background())
	if err != nil {
		t.Fatalf("ExecutiveSummary() error: %v", err)
	}

	if sum.TotalUnits != 12 {
		t.Errorf("total_units = %d, want 12", sum.TotalUnits)
	}
	if sum.NumTransactions != 5 {
		t.Errorf("num_transactions = %d, want 5", sum.NumTransactions)
	}
	if sum.DistinctCustomers != 5 || sum.DistinctProducts != 3 {
		t.Errorf("distinct customers/products = %d/%d, want 5/3",
			sum.DistinctCustomers, sum.DistinctProducts)
	}
	if sum.RuleCount == 0 {
		t.Error("rule_count = 0, want mined rules")
	}

	// All three products appear four times; ties order by key.
	if len(sum.TopProducts) != 3 || sum.TopProducts[0].Key != "A" || sum.TopProducts[0].Count != 4 {
		t.Errorf("top_products = %+v", sum.TopProducts)
	}

	if len(sum.TopCategories) != 2 {
		t.Fatalf("top_categories = %+v, want 2 entries", sum.TopCategories)
	}
	if sum.TopCategories[0].Key != "Dairy" || sum.TopCategories[0].Ratio != 0.6667 {
		t.Errorf("top category = %+v, want Dairy at 0.6667", sum.TopCategories[0])
	}
	if sum.TopCategories[1].Key != "Bakery" || sum.TopCategories[1].Ratio != 0.3333 {
		t.Errorf("second category = %+v, want Bakery at 0.3333", sum.TopCategories[1])
	}
}

func TestTimeSeriesThroughFacade(t *testing.T) {
	eng := newTestEngine(t)

	monthly, err := eng.TimeSeries(context.Background(), LevelMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if len(monthly) != 1 || monthly[0].Period != "2024-03" {
		t.Fatalf("monthly = %+v, want single 2024-03 bucket", monthly)
	}
	if monthly[0].Transactions != 5 || monthly[0].TotalItems != 12 {
		t.Errorf("bucket = %+v, want 5 transactions, 12 items", monthly[0])
	}
}

func TestSegmentDefaultK(t *testing.T) {
	eng := newTestEngine(t)

	m, err := eng.Segment(context.Background(), 0, nil)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}
	if m.K != 2 {
		t.Errorf("k = %d, want configured default 2", m.K)
	}
	if len(m.Assignments) != 5 {
		t.Errorf("assignments = %d, want 5", len(m.Assignments))
	}
}

func TestSegmentFilterOverride(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	// nil keeps the configured policy (filtering disabled here).
	def, err := eng.Segment(ctx, 2, nil)
	if err != nil {
		t.Fatalf("Segment(nil) error: %v", err)
	}
	if def.OutliersRemoved {
		t.Error("nil override enabled filtering despite configured default false")
	}

	on := true
	filtered, err := eng.Segment(ctx, 2, &on)
	if err != nil {
		t.Fatalf("Segment(&true) error: %v", err)
	}
	if !filtered.OutliersRemoved {
		t.Error("explicit true override did not enable filtering")
	}

	off := false
	unfiltered, err := eng.Segment(ctx, 2, &off)
	if err != nil {
		t.Fatalf("Segment(&false) error: %v", err)
	}
	if unfiltered.OutliersRemoved {
		t.Error("explicit false override did not disable filtering")
	}
}

func TestRecommendCustomerDefaultTopN(t *testing.T) {
	eng := newTestEngine(t)

	got, err := eng.RecommendCustomer(context.Background(), "C101", 0)
	if err != nil {
		t.Fatalf("RecommendCustomer() error: %v", err)
	}
	if len(got) != 1 || got[0].Consequent != "C" {
		t.Errorf("recommendations = %+v, want single C", got)
	}
}

func TestRulesView(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	all, err := eng.Rules(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if all.TotalRules == 0 || len(all.Rules) != all.TotalRules {
		t.Fatalf("unfiltered view = %d/%d rules", len(all.Rules), all.TotalRules)
	}
	if all.TotalTransactions != 5 {
		t.Errorf("total_transactions = %d, want 5", all.TotalTransactions)
	}

	limited, err := eng.Rules(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited.Rules) != 2 || limited.TotalRules != all.TotalRules {
		t.Errorf("limited view = %d rules of %d total", len(limited.Rules), limited.TotalRules)
	}
}

func TestRefreshBumpsGeneration(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.ExecutiveSummary(ctx); err != nil {
		t.Fatal(err)
	}
	before := eng.Generation()

	if err := eng.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := eng.Generation(); got != before+1 {
		t.Errorf("generation = %d, want %d", got, before+1)
	}
}

func TestGenerateInsights(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.GenerateInsights(context.Background(), 2)
	if err != nil {
		t.Fatalf("GenerateInsights() error: %v", err)
	}

	txt, err := os.ReadFile(res.TextPath)
	if err != nil {
		t.Fatalf("reading text artifact: %v", err)
	}
	if !strings.Contains(string(txt), "Number of clusters: 2") {
		t.Error("text artifact missing cluster count")
	}
	if _, err := os.Stat(res.JSONPath); err != nil {
		t.Errorf("JSON artifact missing: %v", err)
	}
}

func TestWarmup(t *testing.T) {
	eng := newTestEngine(t)

	if err := eng.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup() error: %v", err)
	}
	if eng.Generation() == 0 {
		t.Error("generation = 0 after warmup, want loaded snapshot")
	}
}
