// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package rules

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/metrics"
)

// Config holds mining thresholds.
type Config struct {
	// MinSupport is the minimum fraction of transactions a pair must
	// appear in.
	MinSupport float64

	// MinConfidence is the minimum directional confidence.
	MinConfidence float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		MinSupport:    0.01,
		MinConfidence: 0.30,
	}
}

// Engine mines and caches association rules over the repository's
// current snapshot. Mining is lazy: the first access after an
// invalidation pays the mining cost, later reads hit the cache.
// Initialize warms the cache eagerly to bound first-request latency.
type Engine struct {
	repo   *dataset.Repository
	cfg    Config
	logger zerolog.Logger

	cache *cachedArtifact[*RuleSet]
}

// NewEngine creates a rule engine bound to the repository and registers
// its cache for invalidation on refresh.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(repo *dataset.Repository, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.MinSupport <= 0 {
		cfg.MinSupport = DefaultConfig().MinSupport
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultConfig().MinConfidence
	}

	e := &Engine{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With().Str("component", "rules").Logger(),
		cache:  newCachedArtifact[*RuleSet](),
	}
	repo.OnRefresh(e.Invalidate)
	return e
}

// Rules returns the rule set for the current snapshot generation, mining
// it if the cache is stale.
func (e *Engine) Rules(ctx context.Context) (*RuleSet, error) {
	for {
		rs, cached, err := e.cache.Get(ctx, e.compute)
		if err != nil {
			return nil, err
		}
		// A refresh may have landed while this value was being
		// computed; a generation mismatch means the cached set is
		// stale despite the Fresh state.
		if rs.Generation == e.repo.Generation() {
			if cached {
				metrics.RuleCacheHits.Inc()
			}
			return rs, nil
		}
		e.cache.Invalidate()
	}
}

// Initialize eagerly mines the rule set. Intended for process start so
// the first request does not pay mining latency.
func (e *Engine) Initialize(ctx context.Context) error {
	_, err := e.Rules(ctx)
	return err
}

// Invalidate marks the cached rule set stale. It is registered as a
// repository refresh hook and may also be called directly.
func (e *Engine) Invalidate() {
	e.cache.Invalidate()
}

// Fresh reports whether a valid rule set is currently cached.
func (e *Engine) Fresh() bool {
	return e.cache.Fresh()
}

// compute mines a new rule set from the current snapshot.
func (e *Engine) compute(ctx context.Context) (*RuleSet, error) {
	metrics.RuleCacheMisses.Inc()
	start := time.Now()

	snap, err := e.repo.Current(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := mine(ctx, snap, e.cfg.MinSupport, e.cfg.MinConfidence)
	if err != nil {
		return nil, err
	}

	metrics.RecordMining(len(rs.Rules), time.Since(start))
	e.logger.Info().
		Int64("generation", rs.Generation).
		Int("transactions", rs.TotalTransactions).
		Int("frequent_items", len(rs.FrequentItems)).
		Int("rules", len(rs.Rules)).
		Dur("duration", time.Since(start)).
		Msg("mined association rules")

	return rs, nil
}
