// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package rules

import (
	"sort"
	"time"
)

// Rule is one directional association rule A -> B. (A -> B) and (B -> A)
// are distinct rules, each independently subject to the confidence
// threshold. Category labels are display values resolved at enrichment
// time; unmapped products carry the explicit "no category" marker.
type Rule struct {
	Antecedent         string  `json:"antecedent"`
	Consequent         string  `json:"consequent"`
	Support            float64 `json:"support"`
	Confidence         float64 `json:"confidence"`
	Lift               float64 `json:"lift"`
	AntecedentCategory string  `json:"antecedent_category,omitempty"`
	ConsequentCategory string  `json:"consequent_category,omitempty"`
}

// RuleSet is one immutable mining result, kept until the repository
// publishes a new snapshot generation.
type RuleSet struct {
	// Rules is sorted by lift descending.
	Rules []Rule `json:"rules"`

	// FrequentItems maps item codes meeting the support floor to their
	// transaction counts.
	FrequentItems map[string]int `json:"frequent_items"`

	// TotalTransactions is the denominator used for support.
	TotalTransactions int `json:"total_transactions"`

	// Generation is the repository snapshot generation this set was
	// mined from.
	Generation int64 `json:"generation"`

	MinedAt time.Time `json:"mined_at"`

	// byAntecedent indexes rule positions for product queries.
	byAntecedent map[string][]int
}

// ByAntecedent returns the rules whose antecedent is the given product,
// in lift-descending order.
func (rs *RuleSet) ByAntecedent(productCode string) []Rule {
	idx := rs.byAntecedent[productCode]
	out := make([]Rule, 0, len(idx))
	for _, i := range idx {
		out = append(out, rs.Rules[i])
	}
	return out
}

// Filtered returns rules with lift >= minLift, truncated to limit when
// limit > 0. The input ordering (lift descending) is preserved.
func (rs *RuleSet) Filtered(minLift float64, limit int) []Rule {
	out := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Lift >= minLift {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// buildIndex sorts rules by lift descending and builds the antecedent
// index. Ties break on (antecedent, consequent) so ordering is
// deterministic across runs.
func (rs *RuleSet) buildIndex() {
	sort.Slice(rs.Rules, func(i, j int) bool {
		a, b := rs.Rules[i], rs.Rules[j]
		if a.Lift != b.Lift {
			return a.Lift > b.Lift
		}
		if a.Antecedent != b.Antecedent {
			return a.Antecedent < b.Antecedent
		}
		return a.Consequent < b.Consequent
	})

	rs.byAntecedent = make(map[string][]int)
	for i, r := range rs.Rules {
		rs.byAntecedent[r.Antecedent] = append(rs.byAntecedent[r.Antecedent], i)
	}
}
