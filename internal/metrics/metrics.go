// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics

	IngestRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartful_ingest_rows_total",
			Help: "Total transaction rows parsed, by outcome",
		},
		[]string{"outcome"}, // "loaded", "dropped"
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cartful_load_duration_seconds",
			Help:    "Duration of full dataset loads in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SnapshotGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cartful_snapshot_generation",
			Help: "Monotonic generation number of the current repository snapshot",
		},
	)

	SnapshotTransactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cartful_snapshot_transactions",
			Help: "Transactions in the current snapshot",
		},
	)

	// Rule mining metrics

	MiningDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cartful_mining_duration_seconds",
			Help:    "Duration of association-rule mining runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	RuleCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cartful_rules_total",
			Help: "Association rules in the current cached rule set",
		},
	)

	RuleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartful_rule_cache_hits_total",
			Help: "Rule set reads served from the fresh cache",
		},
	)

	RuleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartful_rule_cache_misses_total",
			Help: "Rule set reads that triggered recomputation",
		},
	)

	// Clustering metrics

	ClusteringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cartful_clustering_duration_seconds",
			Help:    "Duration of segmentation training runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	OutliersRemoved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cartful_clustering_outliers_removed",
			Help: "Customers excluded by IQR filtering in the latest training run",
		},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartful_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartful_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLoad records the outcome of a dataset load.
func RecordLoad(loaded, dropped int, duration time.Duration) {
	IngestRowsTotal.WithLabelValues("loaded").Add(float64(loaded))
	IngestRowsTotal.WithLabelValues("dropped").Add(float64(dropped))
	LoadDuration.Observe(duration.Seconds())
	SnapshotTransactions.Set(float64(loaded))
}

// RecordMining records a completed mining run.
func RecordMining(ruleCount int, duration time.Duration) {
	MiningDuration.Observe(duration.Seconds())
	RuleCount.Set(float64(ruleCount))
}

// RecordClustering records a completed segmentation training run.
func RecordClustering(outliersRemoved int, duration time.Duration) {
	ClusteringDuration.Observe(duration.Seconds())
	OutliersRemoved.Set(float64(outliersRemoved))
}
