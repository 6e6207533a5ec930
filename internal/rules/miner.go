// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package rules

import (
	"context"
	"sort"
	"time"

	"github.com/cartfulhq/cartful/internal/dataset"
)

// pairKey identifies an unordered item pair; A < B lexicographically so
// (a,b) and (b,a) collapse to one counter.
type pairKey struct {
	A, B string
}

// mine runs the pairwise Apriori pass over one snapshot.
//
// Each transaction contributes its distinct item set once: duplicate
// occurrences of a product within one basket do not inflate counts. Only
// single items and unordered pairs are counted; the full itemset lattice
// is never materialized, which keeps the pass at O(T*m^2) for small
// basket sizes m.
func mine(ctx context.Context, snap *dataset.Snapshot, minSupport, minConfidence float64) (*RuleSet, error) {
	total := len(snap.Transactions)

	itemCounts := make(map[string]int)
	pairCounts := make(map[pairKey]int)

	for i := range snap.Transactions {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		items := distinctSorted(snap.Transactions[i].Items)
		for _, item := range items {
			itemCounts[item]++
		}
		for a := 0; a < len(items); a++ {
			for b := a + 1; b < len(items); b++ {
				pairCounts[pairKey{A: items[a], B: items[b]}]++
			}
		}
	}

	rs := &RuleSet{
		FrequentItems:     make(map[string]int),
		TotalTransactions: total,
		Generation:        snap.Generation,
		MinedAt:           time.Now().UTC(),
	}
	if total == 0 {
		rs.buildIndex()
		return rs, nil
	}

	for item, count := range itemCounts {
		if float64(count)/float64(total) >= minSupport {
			rs.FrequentItems[item] = count
		}
	}

	for pair, countAB := range pairCounts {
		supportAB := float64(countAB) / float64(total)
		if supportAB < minSupport {
			continue
		}

		countA := itemCounts[pair.A]
		countB := itemCounts[pair.B]
		supportA := float64(countA) / float64(total)
		supportB := float64(countB) / float64(total)

		confAB := float64(countAB) / float64(countA)
		confBA := float64(countAB) / float64(countB)

		if confAB >= minConfidence {
			rs.Rules = append(rs.Rules, enrich(snap, Rule{
				Antecedent: pair.A,
				Consequent: pair.B,
				Support:    supportAB,
				Confidence: confAB,
				Lift:       confAB / supportB,
			}))
		}
		if confBA >= minConfidence {
			rs.Rules = append(rs.Rules, enrich(snap, Rule{
				Antecedent: pair.B,
				Consequent: pair.A,
				Support:    supportAB,
				Confidence: confBA,
				Lift:       confBA / supportA,
			}))
		}
	}

	rs.buildIndex()
	return rs, nil
}

// enrich resolves category display labels for both sides of a rule.
// Unmapped products get the explicit "no category" marker here, at the
// presentation boundary; the data layer keeps them absent.
func enrich(snap *dataset.Snapshot, r Rule) Rule {
	r.AntecedentCategory = snap.Catalog.DisplayLabel(r.Antecedent)
	r.ConsequentCategory = snap.Catalog.DisplayLabel(r.Consequent)
	return r
}

// distinctSorted returns the sorted distinct item codes of one basket.
func distinctSorted(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
