// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package segment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/metrics"
	"github.com/cartfulhq/cartful/internal/segment/storage"
)

// modelName is the artifact name used for persisted cluster models.
const modelName = "kmeans"

// Config holds clustering hyperparameters.
type Config struct {
	Restarts          int
	MaxIterations     int
	Seed              int64
	IncludeBasketSize bool
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		Restarts:      10,
		MaxIterations: 300,
		Seed:          42,
	}
}

// Model is one trained segmentation. It is immutable once produced; a
// new training run supersedes it rather than mutating it.
type Model struct {
	K            int       `json:"k"`
	FeatureNames []string  `json:"feature_names"`
	Generation   int64     `json:"generation"`
	TrainedAt    time.Time `json:"trained_at"`
	Seed         int64     `json:"seed"`

	// Centroids are reported in original feature units, after inverse
	// standardization.
	Centroids [][]float64 `json:"centroids"`

	// Assignments maps customer ID to cluster index. Outliers are not
	// assigned.
	Assignments map[string]int `json:"assignments"`

	// ClusterSizes[i] is the number of customers in cluster i.
	ClusterSizes []int `json:"cluster_sizes"`

	// Profiles[i] is the heuristic description of cluster i, derived
	// from its centroid's relative ranking.
	Profiles []string `json:"profiles"`

	// Scaler holds the standardization parameters used for training.
	Scaler Scaler `json:"scaler"`

	OutliersRemoved bool     `json:"outliers_filtered"`
	OutlierCount    int      `json:"outlier_count"`
	OutlierIDs      []string `json:"outlier_ids,omitempty"`

	WCSS float64 `json:"wcss"`
}

// Segmenter trains and caches customer segmentations. Trained models are
// cached per parameter set and invalidated when the repository publishes
// a new snapshot; they are also persisted for reuse without retraining.
type Segmenter struct {
	repo   *dataset.Repository
	cfg    Config
	store  *storage.Store
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]*Model
}

// NewSegmenter creates a Segmenter. store may be nil to disable
// persistence (used by tests).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSegmenter(repo *dataset.Repository, cfg Config, store *storage.Store, logger zerolog.Logger) *Segmenter {
	if cfg.Restarts < 1 {
		cfg.Restarts = DefaultConfig().Restarts
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}

	s := &Segmenter{
		repo:   repo,
		cfg:    cfg,
		store:  store,
		logger: logger.With().Str("component", "segment").Logger(),
		cache:  make(map[string]*Model),
	}
	repo.OnRefresh(s.Invalidate)
	return s
}

// Invalidate drops all cached models. Registered as a repository refresh
// hook.
func (s *Segmenter) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*Model)
}

// Segment returns the trained model for (k, filterOutliers), training
// one if no fresh cached model exists.
func (s *Segmenter) Segment(ctx context.Context, k int, filterOutliers bool) (*Model, error) {
	if k <= 0 {
		return nil, &dataset.InvalidParameterError{Param: "k", Reason: "must be positive"}
	}

	key := fmt.Sprintf("k=%d,iqr=%t", k, filterOutliers)
	s.mu.Lock()
	if m, ok := s.cache[key]; ok && m.Generation == s.repo.Generation() {
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	m, err := s.train(ctx, k, filterOutliers)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = m
	s.mu.Unlock()
	return m, nil
}

// train runs the full pipeline: vectorize, optional IQR filter,
// standardize, cluster, invert, profile, persist.
func (s *Segmenter) train(ctx context.Context, k int, filterOutliers bool) (*Model, error) {
	start := time.Now()

	snap, err := s.repo.Current(ctx)
	if err != nil {
		return nil, err
	}

	featureNames := dataset.FeatureNames(s.cfg.IncludeBasketSize)
	rows := make([][]float64, len(snap.Features))
	ids := make([]string, len(snap.Features))
	for i, f := range snap.Features {
		rows[i] = f.Vector(s.cfg.IncludeBasketSize)
		ids[i] = f.CustomerID
	}

	var outlierIDs []string
	if filterOutliers {
		rows, ids, outlierIDs = filterIQR(rows, ids)
	}

	if k > len(rows) {
		return nil, &dataset.InvalidParameterError{
			Param:  "k",
			Reason: fmt.Sprintf("%d clusters requested but only %d customers remain", k, len(rows)),
		}
	}
	if distinct := distinctRows(rows); distinct < k {
		return nil, &dataset.InvalidParameterError{
			Param:  "k",
			Reason: fmt.Sprintf("%d clusters requested but only %d distinct points remain", k, distinct),
		}
	}

	scaler := FitScaler(rows)
	scaled := scaler.Transform(rows)

	res, err := kmeans(ctx, scaled, k, s.cfg.Restarts, s.cfg.MaxIterations, s.cfg.Seed)
	if err != nil {
		return nil, err
	}

	assignments := make(map[string]int, len(ids))
	sizes := make([]int, k)
	for i, id := range ids {
		assignments[id] = res.Labels[i]
		sizes[res.Labels[i]]++
	}

	centroids := scaler.Inverse(res.Centroids)

	m := &Model{
		K:               k,
		FeatureNames:    featureNames,
		Generation:      snap.Generation,
		TrainedAt:       time.Now().UTC(),
		Seed:            s.cfg.Seed,
		Centroids:       centroids,
		Assignments:     assignments,
		ClusterSizes:    sizes,
		Profiles:        profileCentroids(centroids, featureNames),
		Scaler:          *scaler,
		OutliersRemoved: filterOutliers,
		OutlierCount:    len(outlierIDs),
		OutlierIDs:      outlierIDs,
		WCSS:            res.WCSS,
	}

	if s.store != nil {
		if _, err := s.store.Save(modelName, m, m.TrainedAt); err != nil {
			// Persistence is best-effort: the in-memory model is
			// complete and callers should not fail on disk trouble.
			s.logger.Warn().Err(err).Msg("failed to persist cluster model")
		}
	}

	metrics.RecordClustering(len(outlierIDs), time.Since(start))
	s.logger.Info().
		Int("k", k).
		Bool("filter_outliers", filterOutliers).
		Int("customers", len(rows)).
		Int("outliers_removed", len(outlierIDs)).
		Float64("wcss", m.WCSS).
		Dur("duration", time.Since(start)).
		Msg("trained segmentation model")

	return m, nil
}

// LoadPersisted restores the most recently persisted model, if any.
func (s *Segmenter) LoadPersisted() (*Model, error) {
	if s.store == nil {
		return nil, fmt.Errorf("model persistence is disabled")
	}
	var m Model
	if _, err := s.store.Load(modelName, 0, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
