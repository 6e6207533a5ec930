// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package api is the HTTP query surface over the analytics engine: a
// chi router with request-ID, logging, metrics, CORS and rate-limit
// middleware, thin handlers that delegate to the engine facade, and a
// standardized JSON response envelope.
package api
