// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IngestResult describes a completed upload normalization.
type IngestResult struct {
	// Rows is the number of rows accepted and written to the artifact.
	Rows int `json:"rows"`

	// DroppedRows counts rows rejected during normalization.
	DroppedRows int `json:"dropped_rows"`

	// ArtifactPath is the normalized transaction file written under the
	// dataset's Transactions directory.
	ArtifactPath string `json:"artifact_path"`
}

// Ingest validates and normalizes one uploaded transaction file, writing
// a fully normalized pipe-delimited artifact into the dataset. It does
// NOT refresh the repository: bulk uploads must not pay for re-mining on
// every file, so new data becomes visible only on the next Refresh.
func (r *Repository) Ingest(path string) (*IngestResult, error) {
	res, err := parseTransactionsFile(path)
	if err != nil {
		return nil, err
	}
	if len(res.Transactions) == 0 {
		return nil, &FormatError{File: path, Reason: "no valid rows after normalization"}
	}

	artifact := filepath.Join(
		r.dir, transactionsSubdir,
		fmt.Sprintf("transactions_%s_%s_%s.csv",
			dominantStore(res.Transactions),
			time.Now().UTC().Format("20060102T150405"),
			uuid.New().String()[:8]),
	)

	if err := writeNormalized(artifact, res.Transactions); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("source", path).
		Str("artifact", artifact).
		Int("rows", len(res.Transactions)).
		Int("dropped_rows", res.DroppedRows).
		Msg("ingested transaction file")

	return &IngestResult{
		Rows:         len(res.Transactions),
		DroppedRows:  res.DroppedRows,
		ArtifactPath: artifact,
	}, nil
}

// dominantStore picks the most frequent store ID in the batch for the
// artifact name. Mixed-store uploads are named "multi".
func dominantStore(transactions []Transaction) string {
	counts := make(map[string]int)
	for i := range transactions {
		counts[transactions[i].StoreID]++
	}
	if len(counts) > 1 {
		return "multi"
	}
	for store := range counts {
		if store != "" {
			return store
		}
	}
	return "unknown"
}

// writeNormalized serializes transactions in the canonical pipe format:
// date|store|customer|products with space-separated item codes.
func writeNormalized(path string, transactions []Transaction) error {
	f, err := os.Create(path) //nolint:gosec // artifact path is built from the configured dataset dir
	if err != nil {
		return fmt.Errorf("create artifact %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for i := range transactions {
		tx := &transactions[i]
		_, err := fmt.Fprintf(w, "%s|%s|%s|%s\n",
			tx.Date.Format("2006-01-02"),
			tx.StoreID,
			tx.CustomerID,
			strings.Join(tx.Items, " "))
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("write artifact %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush artifact %s: %w", path, err)
	}
	return f.Close()
}
