// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Command server runs the Cartful analytics engine: it loads the
// configuration, wires the repository, rule engine, segmenter,
// recommender and report writer into the engine facade, and serves the
// HTTP API under a supervision tree until interrupted.
package main
