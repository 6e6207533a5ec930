// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package dataset is the transaction repository: it loads and normalizes
// pipe-delimited transaction logs, derives the exploded per-item view and
// per-customer feature vectors, and owns the snapshot lifecycle.
//
// The repository follows a single-writer, many-reader model. Every load
// produces an immutable Snapshot published through an atomic pointer;
// Refresh is the only mutation and it swaps the whole generation at once.
// Downstream caches register OnRefresh hooks to be marked stale.
//
// Row-level problems (unparseable dates, malformed rows) drop the row and
// count it. File-level problems (uninferable separator, column count
// outside {3,4}) skip the file and record it on the snapshot. Neither
// aborts a batch load.
package dataset
