// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/recommend"
	"github.com/cartfulhq/cartful/internal/report"
	"github.com/cartfulhq/cartful/internal/rules"
	"github.com/cartfulhq/cartful/internal/segment"
)

// Options are the facade-level request defaults.
type Options struct {
	// DefaultK is the cluster count used when a request passes k <= 0.
	DefaultK int

	// FilterOutliers applies IQR outlier removal before clustering.
	FilterOutliers bool
}

// RulesView is the rule query result: a filtered slice plus the mining
// metadata of the set it was cut from.
type RulesView struct {
	Rules             []rules.Rule `json:"rules"`
	TotalRules        int          `json:"total_rules"`
	TotalTransactions int          `json:"total_transactions"`
	Generation        int64        `json:"generation"`
	MinedAt           time.Time    `json:"mined_at"`
}

// Engine composes the analytic components behind one query surface.
type Engine struct {
	repo        *dataset.Repository
	rules       *rules.Engine
	segmenter   *segment.Segmenter
	recommender *recommend.Service
	reports     *report.Writer
	opts        Options
	logger      zerolog.Logger
}

// New wires the facade. All collaborators are required except reports,
// which may be nil when insight generation is not needed (tests).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(
	repo *dataset.Repository,
	ruleEngine *rules.Engine,
	segmenter *segment.Segmenter,
	recommender *recommend.Service,
	reports *report.Writer,
	opts Options,
	logger zerolog.Logger,
) *Engine {
	if opts.DefaultK < 1 {
		opts.DefaultK = 4
	}
	return &Engine{
		repo:        repo,
		rules:       ruleEngine,
		segmenter:   segmenter,
		recommender: recommender,
		reports:     reports,
		opts:        opts,
		logger:      logger.With().Str("component", "engine").Logger(),
	}
}

// Refresh reloads the dataset into a new snapshot generation. Dependent
// caches invalidate themselves through refresh hooks.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.repo.Refresh(ctx)
}

// Generation reports the current snapshot generation.
func (e *Engine) Generation() int64 {
	return e.repo.Generation()
}

// Warmup forces the initial load and rule mining. Called once at
// startup when eager warmup is configured.
func (e *Engine) Warmup(ctx context.Context) error {
	if _, err := e.repo.Current(ctx); err != nil {
		return err
	}
	return e.rules.Initialize(ctx)
}

// Ingest normalizes an uploaded transaction file into the dataset
// directory. The new artifact becomes visible on the next Refresh.
func (e *Engine) Ingest(path string) (*dataset.IngestResult, error) {
	return e.repo.Ingest(path)
}

// ExecutiveSummary computes the KPI set over the current snapshot.
func (e *Engine) ExecutiveSummary(ctx context.Context) (*Summary, error) {
	snap, err := e.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := e.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(snap, len(rs.Rules)), nil
}

// TimeSeries aggregates transaction and item counts per day, ISO week
// or month.
func (e *Engine) TimeSeries(ctx context.Context, level string) ([]TimeBucket, error) {
	snap, err := e.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	return timeSeries(snap, level)
}

// BasketDistribution summarizes basket sizes per customer or item
// volumes per category.
func (e *Engine) BasketDistribution(ctx context.Context, by string) (*Distribution, error) {
	snap, err := e.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	return basketDistribution(snap, by)
}

// Correlation computes the Pearson matrix over the customer feature
// columns.
func (e *Engine) Correlation(ctx context.Context) (*Correlation, error) {
	snap, err := e.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	return correlation(snap), nil
}

// Segment trains or serves the cached segmentation for k clusters.
// k <= 0 selects the configured default. filterOutliers overrides the
// configured IQR filtering policy for this request; nil keeps it.
func (e *Engine) Segment(ctx context.Context, k int, filterOutliers *bool) (*segment.Model, error) {
	if k <= 0 {
		k = e.opts.DefaultK
	}
	filter := e.opts.FilterOutliers
	if filterOutliers != nil {
		filter = *filterOutliers
	}
	return e.segmenter.Segment(ctx, k, filter)
}

// RecommendCustomer returns ranked recommendations for one customer.
// topN <= 0 selects the default list length.
func (e *Engine) RecommendCustomer(ctx context.Context, customerID string, topN int) ([]rules.Rule, error) {
	if topN <= 0 {
		topN = recommend.DefaultTopN
	}
	return e.recommender.ForCustomer(ctx, customerID, topN)
}

// RecommendProduct returns products bought together with one product.
func (e *Engine) RecommendProduct(ctx context.Context, productCode string, topN int) ([]rules.Rule, error) {
	if topN <= 0 {
		topN = recommend.DefaultTopN
	}
	return e.recommender.ForProduct(ctx, productCode, topN)
}

// Rules returns mined rules with lift >= minLift, truncated to limit
// when limit > 0, plus the mining metadata.
func (e *Engine) Rules(ctx context.Context, minLift float64, limit int) (*RulesView, error) {
	rs, err := e.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}
	return &RulesView{
		Rules:             rs.Filtered(minLift, limit),
		TotalRules:        len(rs.Rules),
		TotalTransactions: rs.TotalTransactions,
		Generation:        rs.Generation,
		MinedAt:           rs.MinedAt,
	}, nil
}

// GenerateInsights trains the segmentation for k clusters, mines rules
// if needed and writes the consolidated insight artifacts.
func (e *Engine) GenerateInsights(ctx context.Context, k int) (report.Result, error) {
	if e.reports == nil {
		return report.Result{}, &dataset.InvalidParameterError{
			Param: "results_dir", Reason: "insight generation is not configured",
		}
	}

	model, err := e.Segment(ctx, k, nil)
	if err != nil {
		return report.Result{}, err
	}
	rs, err := e.rules.Rules(ctx)
	if err != nil {
		return report.Result{}, err
	}

	res, err := e.reports.Generate(model, rs)
	if err != nil {
		return report.Result{}, err
	}
	e.logger.Info().Int("k", model.K).Str("text", res.TextPath).Msg("insights generated")
	return res, nil
}
