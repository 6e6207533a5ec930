// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package catalog holds the product reference data: the product to
// category mapping and the category display names.
//
// Lookups that miss never fail. A product without a category mapping is
// reported as unmapped, and aggregation layers are expected to exclude
// unmapped items rather than bucket them. Display labels for unmapped
// items are synthesized only at presentation boundaries.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// NoCategoryLabel is the display marker for products without a category
// mapping. It exists for presentation only; the underlying category ID
// stays absent.
const NoCategoryLabel = "(no category)"

// Store holds immutable product reference data. A Store is built once per
// repository snapshot and never mutated afterwards, so concurrent reads
// need no locking.
type Store struct {
	productCategory map[string]string // product code -> category ID
	categoryName    map[string]string // category ID -> display name
}

// NewStore returns an empty catalog store.
func NewStore() *Store {
	return &Store{
		productCategory: make(map[string]string),
		categoryName:    make(map[string]string),
	}
}

// Load reads both catalog files. The product-category file carries a
// header row which is skipped; the categories file does not.
func Load(productCategoryPath, categoriesPath string) (*Store, error) {
	s := NewStore()
	if err := s.loadProductCategories(productCategoryPath); err != nil {
		return nil, err
	}
	if err := s.loadCategoryNames(categoriesPath); err != nil {
		return nil, err
	}
	return s, nil
}

// loadProductCategories reads product|category pairs, skipping the first
// line (a non-data header).
func (s *Store) loadProductCategories(path string) error {
	return readPipeFile(path, true, func(fields []string) {
		product := strings.TrimSpace(fields[0])
		category := strings.TrimSpace(fields[1])
		if product != "" && category != "" {
			s.productCategory[product] = category
		}
	})
}

// loadCategoryNames reads categoryId|name pairs.
func (s *Store) loadCategoryNames(path string) error {
	return readPipeFile(path, false, func(fields []string) {
		id := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		if id != "" {
			s.categoryName[id] = name
		}
	})
}

// readPipeFile streams a two-column pipe-delimited file. Rows with fewer
// than two fields are skipped; a missing or unreadable file is an error
// reported with the file identifier.
func readPipeFile(path string, skipHeader bool, fn func(fields []string)) error {
	f, err := os.Open(path) //nolint:gosec // path comes from validated configuration
	if err != nil {
		return fmt.Errorf("open catalog file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if skipHeader {
				continue
			}
		}
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		fn(fields)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return nil
}

// CategoryOf returns the category ID for a product code. The second
// return value reports whether a mapping exists.
func (s *Store) CategoryOf(productCode string) (string, bool) {
	id, ok := s.productCategory[productCode]
	return id, ok
}

// CategoryName returns the display name for a category ID, falling back
// to the ID itself when no name is known.
func (s *Store) CategoryName(categoryID string) string {
	if name, ok := s.categoryName[categoryID]; ok {
		return name
	}
	return categoryID
}

// DisplayLabel resolves a product code to a category display label for
// presentation. Unmapped products resolve to NoCategoryLabel.
func (s *Store) DisplayLabel(productCode string) string {
	id, ok := s.productCategory[productCode]
	if !ok {
		return NoCategoryLabel
	}
	return s.CategoryName(id)
}

// Products returns the number of products with a category mapping.
func (s *Store) Products() int {
	return len(s.productCategory)
}

// Categories returns the number of known category names.
func (s *Store) Categories() int {
	return len(s.categoryName)
}
