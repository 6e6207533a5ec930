// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package config loads and validates Cartful configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then CARTFUL_* environment variables. Struct-tag validation
// runs on the merged result, so a bad override is caught at startup rather
// than at first use.
package config
