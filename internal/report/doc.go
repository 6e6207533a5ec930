// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package report writes consolidated business-insight artifacts to the
// results directory: a human-readable text summary and a structured
// JSON document, both combining the current customer segmentation with
// the top association rules.
package report
