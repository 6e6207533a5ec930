// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package metrics exposes Prometheus instrumentation for ingestion, rule
// mining, clustering, and the API surface. Collectors are registered with
// the default registry via promauto and served on /metrics.
package metrics
