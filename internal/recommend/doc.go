// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package recommend answers "what goes with customer X / product Y"
// queries over the mined association rules.
//
// The customer path filters rules to those whose antecedent appears in
// the customer's purchase history and whose consequent does not, then
// collapses duplicate consequents keeping the highest-lift rule. The
// product path serves rules keyed by antecedent directly. Both are pure
// reads: rule access goes through the rule engine, which serves a fresh
// cached set or recomputes lazily, so this package never mines on its
// own.
package recommend
