// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartfulhq/cartful/internal/catalog"
	"github.com/cartfulhq/cartful/internal/metrics"
)

// Dataset directory layout, matching the upstream export job.
const (
	transactionsSubdir  = "Transactions"
	productsSubdir      = "Products"
	productCategoryFile = "ProductCategory.csv"
	categoriesFile      = "Categories.csv"
)

// Repository owns the loaded dataset. All reads go through an immutable
// Snapshot reached by an atomic pointer; Refresh builds a complete new
// Snapshot and swaps it in, so readers never observe a partial mix of
// old transactions and new derived views.
type Repository struct {
	dir    string
	logger zerolog.Logger

	snap atomic.Pointer[Snapshot]

	// refreshMu serializes Refresh calls (single-writer discipline).
	// Readers never take it.
	refreshMu sync.Mutex

	// onRefresh hooks are invoked after each successful swap so that
	// downstream caches (rules, cluster models) can mark themselves
	// stale. They must be cheap: actual recomputation happens lazily.
	hookMu    sync.Mutex
	onRefresh []func()
}

// NewRepository creates a Repository over the given dataset root. No data
// is loaded until Refresh or the first Current call.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRepository(dir string, logger zerolog.Logger) *Repository {
	return &Repository{
		dir:    dir,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
}

// OnRefresh registers an invalidation hook run after every successful
// refresh.
func (r *Repository) OnRefresh(fn func()) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.onRefresh = append(r.onRefresh, fn)
}

// Current returns the current snapshot, performing an initial load if no
// refresh has happened yet.
func (r *Repository) Current(ctx context.Context) (*Snapshot, error) {
	if s := r.snap.Load(); s != nil {
		return s, nil
	}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return r.snap.Load(), nil
}

// Generation returns the current snapshot generation, 0 before the first
// load.
func (r *Repository) Generation() int64 {
	if s := r.snap.Load(); s != nil {
		return s.Generation
	}
	return 0
}

// Refresh reloads catalog and transaction files, rebuilds all derived
// views, and atomically replaces the snapshot. Downstream caches are
// invalidated, not recomputed; they refill on next access.
func (r *Repository) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()

	prev := r.snap.Load()
	var generation int64 = 1
	if prev != nil {
		generation = prev.Generation + 1
	}

	cat, err := catalog.Load(
		filepath.Join(r.dir, productsSubdir, productCategoryFile),
		filepath.Join(r.dir, productsSubdir, categoriesFile),
	)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	paths, err := r.transactionFiles()
	if err != nil {
		return err
	}

	var (
		transactions []Transaction
		dropped      int
		skipped      = make(map[string]string)
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := parseTransactionsFile(path)
		if err != nil {
			// File-level failure skips this file only; the rest of the
			// load proceeds.
			skipped[path] = err.Error()
			r.logger.Warn().Str("file", path).Err(err).Msg("skipping malformed transaction file")
			continue
		}
		transactions = append(transactions, res.Transactions...)
		dropped += res.DroppedRows
	}

	exploded := buildExploded(transactions, cat)
	features, index, items := buildFeatures(transactions, exploded)

	snap := &Snapshot{
		Generation:    generation,
		LoadedAt:      time.Now().UTC(),
		Catalog:       cat,
		Transactions:  transactions,
		Exploded:      exploded,
		Features:      features,
		featureIndex:  index,
		customerItems: items,
		DroppedRows:   dropped,
		SkippedFiles:  skipped,
	}

	r.snap.Store(snap)
	metrics.RecordLoad(len(transactions), dropped, time.Since(start))
	metrics.SnapshotGeneration.Set(float64(generation))

	r.hookMu.Lock()
	hooks := make([]func(), len(r.onRefresh))
	copy(hooks, r.onRefresh)
	r.hookMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	r.logger.Info().
		Int64("generation", generation).
		Int("files", len(paths)).
		Int("skipped_files", len(skipped)).
		Int("transactions", len(transactions)).
		Int("exploded_items", len(exploded)).
		Int("customers", len(features)).
		Int("dropped_rows", dropped).
		Dur("duration", time.Since(start)).
		Msg("snapshot refreshed")

	return nil
}

// transactionFiles enumerates the transaction files in the dataset,
// sorted for deterministic load order.
func (r *Repository) transactionFiles() ([]string, error) {
	dir := filepath.Join(r.dir, transactionsSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read transactions dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no transaction files under %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}
