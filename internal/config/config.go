// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Cartful engine and its HTTP
// surface. Values are layered defaults < YAML file < environment.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Dataset    DatasetConfig    `koanf:"dataset"`
	Mining     MiningConfig     `koanf:"mining"`
	Clustering ClusteringConfig `koanf:"clustering"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP query surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitPerMinute caps requests per client IP. 0 disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"gte=0"`
}

// DatasetConfig locates the raw dataset and output artifacts.
type DatasetConfig struct {
	// Dir is the dataset root. Transaction files live under
	// Dir/Transactions, catalog files under Dir/Products.
	Dir string `koanf:"dir" validate:"required"`

	// ResultsDir receives generated insight artifacts.
	ResultsDir string `koanf:"results_dir" validate:"required"`

	// ModelsDir receives persisted cluster models.
	ModelsDir string `koanf:"models_dir" validate:"required"`

	// RefreshInterval triggers periodic repository refreshes when > 0.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// MiningConfig controls the association-rule miner.
type MiningConfig struct {
	// MinSupport is the minimum pair support for an emitted rule.
	MinSupport float64 `koanf:"min_support" validate:"gt=0,lte=1"`

	// MinConfidence is the minimum directional confidence for an emitted rule.
	MinConfidence float64 `koanf:"min_confidence" validate:"gt=0,lte=1"`

	// EagerWarmup mines rules at startup instead of on first request.
	EagerWarmup bool `koanf:"eager_warmup"`
}

// ClusteringConfig controls customer segmentation.
type ClusteringConfig struct {
	// DefaultK is the cluster count used when a request does not specify one.
	DefaultK int `koanf:"default_k" validate:"gte=1"`

	// Restarts is the number of k-means initializations; the run with the
	// lowest WCSS wins.
	Restarts int `koanf:"restarts" validate:"gte=1"`

	// MaxIterations caps Lloyd iterations within a single run.
	MaxIterations int `koanf:"max_iterations" validate:"gte=1"`

	// Seed fixes the random source so repeated runs are reproducible.
	Seed int64 `koanf:"seed"`

	// FilterOutliers enables IQR-based outlier removal before clustering.
	FilterOutliers bool `koanf:"filter_outliers"`

	// IncludeBasketSize adds avg_basket_size as a clustering dimension.
	// By default it is used for profiling only.
	IncludeBasketSize bool `koanf:"include_basket_size"`
}

// LoggingConfig configures the logging package.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// defaultConfig returns a Config with all defaults applied. These are
// layered first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":8080",
			ShutdownTimeout:    10 * time.Second,
			CORSAllowedOrigins: []string{"*"},
			RateLimitPerMinute: 300,
		},
		Dataset: DatasetConfig{
			Dir:             "/data/dataset",
			ResultsDir:      "/data/results",
			ModelsDir:       "/data/models",
			RefreshInterval: 0, // Disabled: refresh is caller-driven by default
		},
		Mining: MiningConfig{
			MinSupport:    0.01,
			MinConfidence: 0.30,
			EagerWarmup:   true,
		},
		Clustering: ClusteringConfig{
			DefaultK:          4,
			Restarts:          10,
			MaxIterations:     300,
			Seed:              42,
			FilterOutliers:    false,
			IncludeBasketSize: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for invalid values, combining struct
// tag validation with cross-field checks.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if c.Mining.MinSupport > c.Mining.MinConfidence {
		// Not strictly invalid, but a support floor above the confidence
		// floor almost always means the two were swapped.
		return fmt.Errorf("config validation: min_support %.3f exceeds min_confidence %.3f",
			c.Mining.MinSupport, c.Mining.MinConfidence)
	}

	if c.Dataset.RefreshInterval < 0 {
		return fmt.Errorf("config validation: refresh_interval must not be negative")
	}

	return nil
}
