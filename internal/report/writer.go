// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/rules"
	"github.com/cartfulhq/cartful/internal/segment"
)

const (
	textFileName = "business_insights.txt"
	jsonFileName = "business_insights.json"

	// topRules caps the rules listed in the text artifact. The JSON
	// artifact carries the full rule set.
	topRules = 20
)

// Result names the artifacts produced by one Generate call.
type Result struct {
	TextPath string `json:"text_path"`
	JSONPath string `json:"json_path"`
}

// document is the JSON artifact shape.
type document struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	Segmentation *segment.Model `json:"segmentation"`
	Rules        *rules.RuleSet `json:"rules"`
}

// Writer renders insight artifacts into a fixed results directory.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first use, not here.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// Generate writes both artifacts and returns their paths. Existing
// artifacts are overwritten; each run reflects the current model and
// rule set in full.
func (w *Writer) Generate(model *segment.Model, rs *rules.RuleSet) (Result, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return Result{}, fmt.Errorf("creating results dir: %w", err)
	}

	res := Result{
		TextPath: filepath.Join(w.dir, textFileName),
		JSONPath: filepath.Join(w.dir, jsonFileName),
	}

	if err := os.WriteFile(res.TextPath, []byte(renderText(model, rs)), 0o600); err != nil {
		return Result{}, fmt.Errorf("writing text insights: %w", err)
	}

	doc := document{
		GeneratedAt:  time.Now().UTC(),
		Segmentation: model,
		Rules:        rs,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encoding JSON insights: %w", err)
	}
	if err := os.WriteFile(res.JSONPath, raw, 0o600); err != nil {
		return Result{}, fmt.Errorf("writing JSON insights: %w", err)
	}

	w.logger.Info().
		Str("text", res.TextPath).
		Str("json", res.JSONPath).
		Int("clusters", model.K).
		Int("rules", len(rs.Rules)).
		Msg("insight artifacts written")
	return res, nil
}

// renderText builds the human-readable summary.
func renderText(model *segment.Model, rs *rules.RuleSet) string {
	var b strings.Builder

	b.WriteString("=== CUSTOMER SEGMENTATION SUMMARY ===\n")
	fmt.Fprintf(&b, "Number of clusters: %d\n", model.K)
	if model.OutliersRemoved {
		fmt.Fprintf(&b, "Outliers removed: %d\n", model.OutlierCount)
	}
	b.WriteString("\n")
	for c := 0; c < model.K; c++ {
		fmt.Fprintf(&b, "Cluster %d (%d customers): %s\n", c, model.ClusterSizes[c], model.Profiles[c])
	}

	fmt.Fprintf(&b, "\n=== TOP %d ASSOCIATION RULES (ordered by lift) ===\n", topRules)
	b.WriteString("(Lift > 1 means the pair is bought together more often than chance)\n\n")
	for i, r := range rs.Filtered(0, topRules) {
		fmt.Fprintf(&b, "%d. %s -> %s [%s -> %s]\n", i+1, r.Antecedent, r.Consequent,
			orUnknown(r.AntecedentCategory), orUnknown(r.ConsequentCategory))
		fmt.Fprintf(&b, "   Lift: %.3f | Confidence: %.3f | Support: %.4f\n", r.Lift, r.Confidence, r.Support)
	}

	return b.String()
}

func orUnknown(category string) string {
	if category == "" {
		return "N/A"
	}
	return category
}
