// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package engine is the facade the HTTP layer talks to. It composes the
// transaction repository, the rule engine, the segmenter, the
// recommendation service and the report writer behind a single query
// surface: refresh, executive summary, time series, distributions,
// correlation, segmentation, recommendations, rules and insight
// generation.
//
// The facade holds no state of its own beyond its collaborators; every
// query reads one immutable snapshot, so results within a call are
// internally consistent even while a refresh runs concurrently.
package engine
