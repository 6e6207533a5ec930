// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package logging provides centralized zerolog-based logging for Cartful.
//
// All components log through the global logger configured here. JSON output
// is the default; console output is available for development. Request
// handlers propagate a request ID through context so that every log line
// emitted while serving a request can be correlated.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("file", path).Int("rows", n).Msg("loaded transactions")
package logging
