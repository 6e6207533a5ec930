// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package rules mines two-item association rules from the transaction
// snapshot.
//
// The miner is a pairwise Apriori variant: it counts distinct items and
// unordered item pairs per transaction, then emits a directional rule for
// each pair direction meeting both the support and confidence floors.
// Lift is reported, not filtered on. The full itemset lattice is never
// built; baskets are small, so the pairwise pass stays cheap even at
// millions of transactions.
//
// Mined rule sets are cached per snapshot generation with a
// stale/computing/fresh state machine and invalidated by repository
// refreshes.
package rules
