// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package recommend

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/rules"
)

// DefaultTopN is used when a caller passes top_n <= 0 at the API
// boundary.
const DefaultTopN = 5

// Service composes the repository (purchase history) with the rule
// engine (mined rules) to produce ranked recommendations.
type Service struct {
	repo   *dataset.Repository
	rules  *rules.Engine
	logger zerolog.Logger
}

// NewService creates a recommendation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(repo *dataset.Repository, ruleEngine *rules.Engine, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		rules:  ruleEngine,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// ForCustomer recommends products for a customer based on their purchase
// history: rules whose antecedent the customer has bought and whose
// consequent they have not, deduplicated per consequent keeping the
// highest-lift rule, sorted by lift descending, truncated to topN.
//
// Returns *dataset.NotFoundError when the customer has no transaction
// history.
func (s *Service) ForCustomer(ctx context.Context, customerID string, topN int) ([]rules.Rule, error) {
	if topN <= 0 {
		return nil, &dataset.InvalidParameterError{Param: "top_n", Reason: "must be positive"}
	}

	snap, err := s.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	owned := snap.PurchasedBy(customerID)
	if owned == nil {
		return nil, &dataset.NotFoundError{Kind: "customer", ID: customerID}
	}

	rs, err := s.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}
	picked := pickForHistory(owned, rs.Rules, topN)
	s.logger.Debug().
		Str("customer_id", customerID).
		Int("history_size", len(owned)).
		Int("recommendations", len(picked)).
		Msg("Customer recommendations computed")
	return picked, nil
}

// ForProduct recommends products bought together with the given product:
// rules with the product as antecedent, sorted by lift descending,
// truncated to topN. Duplicate consequents are collapsed to their
// highest-lift rule the same way as the customer path.
func (s *Service) ForProduct(ctx context.Context, productCode string, topN int) ([]rules.Rule, error) {
	if topN <= 0 {
		return nil, &dataset.InvalidParameterError{Param: "top_n", Reason: "must be positive"}
	}

	rs, err := s.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}

	best := make(map[string]rules.Rule)
	for _, r := range rs.ByAntecedent(productCode) {
		if cur, ok := best[r.Consequent]; !ok || r.Lift > cur.Lift {
			best[r.Consequent] = r
		}
	}

	return rank(best, topN), nil
}

// pickForHistory keeps rules whose antecedent the customer has bought
// and whose consequent they have not, collapsing duplicate consequents
// to the highest-lift rule.
func pickForHistory(owned map[string]struct{}, all []rules.Rule, topN int) []rules.Rule {
	best := make(map[string]rules.Rule)
	for _, r := range all {
		if _, has := owned[r.Antecedent]; !has {
			continue
		}
		if _, has := owned[r.Consequent]; has {
			continue
		}
		if cur, ok := best[r.Consequent]; !ok || r.Lift > cur.Lift {
			best[r.Consequent] = r
		}
	}
	return rank(best, topN)
}

// rank orders deduplicated rules by lift descending (consequent code
// breaking ties for determinism) and truncates to topN.
func rank(best map[string]rules.Rule, topN int) []rules.Rule {
	out := make([]rules.Rule, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lift != out[j].Lift {
			return out[i].Lift > out[j].Lift
		}
		return out[i].Consequent < out[j].Consequent
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
