// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Analytics is the slice of the engine facade this service drives.
type Analytics interface {
	// Warmup forces the initial dataset load and rule mining.
	Warmup(ctx context.Context) error

	// Refresh reloads the dataset into a new snapshot generation.
	Refresh(ctx context.Context) error
}

// WarmupConfig controls startup warmup and periodic refresh.
type WarmupConfig struct {
	// WarmOnStartup loads the dataset and mines rules when the service
	// starts, so the first request does not pay the cost.
	WarmOnStartup bool

	// RefreshInterval re-runs Refresh periodically when > 0.
	RefreshInterval time.Duration

	// OpTimeout bounds a single warmup or refresh run.
	OpTimeout time.Duration
}

// WarmupService warms the engine at startup and optionally refreshes
// the dataset on a schedule. A failed run is logged and retried on the
// next tick rather than crashing the service.
type WarmupService struct {
	engine Analytics
	config WarmupConfig
	logger zerolog.Logger
}

// NewWarmupService creates the warmup/refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmupService(engine Analytics, cfg WarmupConfig, logger zerolog.Logger) *WarmupService {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 10 * time.Minute
	}
	return &WarmupService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "warmup").Logger(),
	}
}

// Serve implements suture.Service.
func (s *WarmupService) Serve(ctx context.Context) error {
	if s.config.WarmOnStartup {
		if err := s.run(ctx, "warmup", s.engine.Warmup); err != nil {
			// The engine falls back to lazy loading on first request.
			s.logger.Warn().Err(err).Msg("startup warmup failed")
		}
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.run(ctx, "refresh", s.engine.Refresh); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

func (s *WarmupService) run(ctx context.Context, op string, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, s.config.OpTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(opCtx); err != nil {
		return err
	}
	s.logger.Info().Str("op", op).Dur("duration", time.Since(start)).Msg("completed")
	return nil
}

// String names the service in supervisor logs.
func (s *WarmupService) String() string {
	return "warmup-service"
}
