// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package rules

import (
	"context"
	"sync"
)

// artifactState is the lifecycle of a cached derived artifact.
type artifactState int

const (
	// stateStale means the artifact must be recomputed before use.
	stateStale artifactState = iota
	// stateComputing means a recomputation is in flight; waiters block
	// on it instead of starting their own.
	stateComputing
	// stateFresh means the cached value is valid for the current
	// snapshot generation.
	stateFresh
)

// cachedArtifact guards one lazily computed value with the
// Stale/Computing/Fresh state machine. Invalidate moves it back to
// Stale; the next Get recomputes. Concurrent Gets during a computation
// share the single in-flight result.
type cachedArtifact[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state artifactState
	value T
	err   error
}

func newCachedArtifact[T any]() *cachedArtifact[T] {
	a := &cachedArtifact[T]{}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Get returns the cached value, computing it first if stale. The compute
// function runs outside the lock so readers of a fresh value are never
// blocked behind a recomputation they did not ask for.
func (a *cachedArtifact[T]) Get(ctx context.Context, compute func(context.Context) (T, error)) (T, bool, error) {
	a.mu.Lock()
	for a.state == stateComputing {
		a.cond.Wait()
	}
	if a.state == stateFresh {
		v := a.value
		a.mu.Unlock()
		return v, true, nil
	}
	a.state = stateComputing
	a.mu.Unlock()

	value, err := compute(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		var zero T
		a.state = stateStale
		a.value = zero
		a.err = err
		a.cond.Broadcast()
		return zero, false, err
	}
	a.state = stateFresh
	a.value = value
	a.err = nil
	a.cond.Broadcast()
	return value, false, nil
}

// Invalidate marks the artifact stale. An in-flight computation is
// allowed to finish and its result is cached as Fresh; callers that need
// the value bound to a snapshot generation must compare generations and
// re-invalidate on mismatch, as Engine.Rules does.
func (a *cachedArtifact[T]) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateFresh {
		var zero T
		a.value = zero
	}
	if a.state != stateComputing {
		a.state = stateStale
	}
}

// Fresh reports whether the artifact currently holds a valid value.
func (a *cachedArtifact[T]) Fresh() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateFresh
}
