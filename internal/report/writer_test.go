// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/rules"
	"github.com/cartfulhq/cartful/internal/segment"
)

func testModel() *segment.Model {
	return &segment.Model{
		K:            2,
		FeatureNames: []string{"frequency", "total_items", "distinct_products", "distinct_categories"},
		Centroids: [][]float64{
			{2, 4, 3, 2},
			{10, 60, 12, 5},
		},
		Assignments:  map[string]int{"C1": 0, "C2": 1},
		ClusterSizes: []int{1, 1},
		Profiles:     []string{"low frequency", "VIP: high frequency, high volume"},
	}
}

func testRuleSet() *rules.RuleSet {
	return &rules.RuleSet{
		Rules: []rules.Rule{
			{Antecedent: "A", Consequent: "B", Support: 0.25, Confidence: 0.8, Lift: 2.1,
				AntecedentCategory: "Dairy", ConsequentCategory: "Bakery"},
			{Antecedent: "B", Consequent: "A", Support: 0.25, Confidence: 0.5, Lift: 1.3},
		},
		TotalTransactions: 8,
	}
}

func TestGenerateWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "results"), zerolog.Nop())

	res, err := w.Generate(testModel(), testRuleSet())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	txt, err := os.ReadFile(res.TextPath)
	if err != nil {
		t.Fatalf("reading text artifact: %v", err)
	}
	for _, want := range []string{
		"Number of clusters: 2",
		"Cluster 1 (1 customers): VIP: high frequency, high volume",
		"1. A -> B [Dairy -> Bakery]",
		"Lift: 2.100 | Confidence: 0.800 | Support: 0.2500",
		"2. B -> A [N/A -> N/A]",
	} {
		if !strings.Contains(string(txt), want) {
			t.Errorf("text artifact missing %q", want)
		}
	}

	raw, err := os.ReadFile(res.JSONPath)
	if err != nil {
		t.Fatalf("reading JSON artifact: %v", err)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("JSON artifact does not parse: %v", err)
	}
	if doc.Segmentation.K != 2 {
		t.Errorf("segmentation k = %d, want 2", doc.Segmentation.K)
	}
	if len(doc.Rules.Rules) != 2 {
		t.Errorf("rules = %d, want 2", len(doc.Rules.Rules))
	}
	if doc.GeneratedAt.IsZero() {
		t.Error("generated_at is zero")
	}
}

func TestGenerateOverwrites(t *testing.T) {
	w := NewWriter(t.TempDir(), zerolog.Nop())

	if _, err := w.Generate(testModel(), testRuleSet()); err != nil {
		t.Fatal(err)
	}

	rs := testRuleSet()
	rs.Rules = rs.Rules[:1]
	res, err := w.Generate(testModel(), rs)
	if err != nil {
		t.Fatal(err)
	}

	txt, err := os.ReadFile(res.TextPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(txt), "2. B -> A") {
		t.Error("second run still lists the rule removed from the input")
	}
}
