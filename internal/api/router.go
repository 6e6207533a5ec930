// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartfulhq/cartful/internal/engine"
)

// RouterConfig carries the middleware settings for the HTTP surface.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

// NewRouter builds the chi router with the full middleware chain and
// all routes.
func NewRouter(eng *engine.Engine, cfg RouterConfig) http.Handler {
	h := NewHandlers(eng)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID())
	r.Use(RequestLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(RateLimit(cfg.RateLimitPerMinute))

	r.Get("/health", h.Health)
	r.Post("/refresh", h.Refresh)
	r.Post("/ingest", h.Ingest)

	r.Get("/metrics/executive-summary", h.ExecutiveSummary)

	r.Route("/visualizations", func(r chi.Router) {
		r.Get("/time-series", h.TimeSeries)
		r.Get("/boxplot", h.Boxplot)
		r.Get("/correlation", h.Correlation)
	})

	r.Get("/segmentation/kmeans", h.Segmentation)

	r.Route("/recommend", func(r chi.Router) {
		r.Get("/customer/{customerID}", h.RecommendCustomer)
		r.Get("/product/{productCode}", h.RecommendProduct)
	})

	r.Get("/rules", h.Rules)
	r.Post("/insights/generate", h.GenerateInsights)

	// Prometheus exposition; bypasses the envelope on purpose.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
