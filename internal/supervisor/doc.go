// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package supervisor builds the suture supervision tree for the
// process: an analytics layer (dataset warmup and periodic refresh) and
// an API layer (the HTTP server). Failures restart the affected service
// with backoff; a crash in one layer does not take the other down.
//
// Supervisor events are logged through the zerolog-backed slog adapter
// so the whole process shares one log stream.
package supervisor
