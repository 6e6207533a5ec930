// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cartfulhq/cartful/internal/api"
	"github.com/cartfulhq/cartful/internal/config"
	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/engine"
	"github.com/cartfulhq/cartful/internal/logging"
	"github.com/cartfulhq/cartful/internal/recommend"
	"github.com/cartfulhq/cartful/internal/report"
	"github.com/cartfulhq/cartful/internal/rules"
	"github.com/cartfulhq/cartful/internal/segment"
	"github.com/cartfulhq/cartful/internal/segment/storage"
	"github.com/cartfulhq/cartful/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("configuration error")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("dataset_dir", cfg.Dataset.Dir).
		Str("addr", cfg.Server.Addr).
		Msg("starting cartful")

	repo := dataset.NewRepository(cfg.Dataset.Dir, logger)
	ruleEngine := rules.NewEngine(repo, rules.Config{
		MinSupport:    cfg.Mining.MinSupport,
		MinConfidence: cfg.Mining.MinConfidence,
	}, logger)

	modelStore, err := storage.NewStore(cfg.Dataset.ModelsDir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Dataset.ModelsDir).Msg("model store init failed")
	}
	segmenter := segment.NewSegmenter(repo, segment.Config{
		Restarts:          cfg.Clustering.Restarts,
		MaxIterations:     cfg.Clustering.MaxIterations,
		Seed:              cfg.Clustering.Seed,
		IncludeBasketSize: cfg.Clustering.IncludeBasketSize,
	}, modelStore, logger)

	recommender := recommend.NewService(repo, ruleEngine, logger)
	reports := report.NewWriter(cfg.Dataset.ResultsDir, logger)

	eng := engine.New(repo, ruleEngine, segmenter, recommender, reports, engine.Options{
		DefaultK:       cfg.Clustering.DefaultK,
		FilterOutliers: cfg.Clustering.FilterOutliers,
	}, logger)

	router := api.NewRouter(eng, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAnalyticsService(supervisor.NewWarmupService(eng, supervisor.WarmupConfig{
		WarmOnStartup:   cfg.Mining.EagerWarmup,
		RefreshInterval: cfg.Dataset.RefreshInterval,
	}, logger))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervisor stopped")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("service missed shutdown timeout")
		}
	}
	logger.Info().Msg("shutdown complete")
}
