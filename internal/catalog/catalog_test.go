// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	pcPath := writeFile(t, dir, "ProductCategory.csv",
		"product|category\nP001|C1\nP002|C2\nP003|C1\n")
	catPath := writeFile(t, dir, "Categories.csv",
		"C1|Dairy\nC2|Bakery\n")

	s, err := Load(pcPath, catPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if s.Products() != 3 {
		t.Errorf("Products() = %d, want 3 (header row must be skipped)", s.Products())
	}
	if s.Categories() != 2 {
		t.Errorf("Categories() = %d, want 2", s.Categories())
	}

	id, ok := s.CategoryOf("P001")
	if !ok || id != "C1" {
		t.Errorf("CategoryOf(P001) = %q, %v; want C1, true", id, ok)
	}
	if _, ok := s.CategoryOf("P999"); ok {
		t.Error("CategoryOf(P999) = true, want false for unmapped product")
	}
}

func TestCategoryNameFallback(t *testing.T) {
	s := NewStore()
	s.categoryName["C1"] = "Dairy"

	if got := s.CategoryName("C1"); got != "Dairy" {
		t.Errorf("CategoryName(C1) = %q, want Dairy", got)
	}
	if got := s.CategoryName("C9"); got != "C9" {
		t.Errorf("CategoryName(C9) = %q, want the ID itself", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	s := NewStore()
	s.productCategory["P001"] = "C1"
	s.categoryName["C1"] = "Dairy"

	tests := []struct {
		product string
		want    string
	}{
		{"P001", "Dairy"},
		{"P999", NoCategoryLabel},
	}
	for _, tt := range tests {
		if got := s.DisplayLabel(tt.product); got != tt.want {
			t.Errorf("DisplayLabel(%s) = %q, want %q", tt.product, got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "Categories.csv", "C1|Dairy\n")

	if _, err := Load(filepath.Join(dir, "nope.csv"), catPath); err == nil {
		t.Error("Load() with missing product-category file: want error")
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	pcPath := writeFile(t, dir, "ProductCategory.csv",
		"product|category\nP001|C1\nmalformed-no-pipe\n\nP002|C2\n")
	catPath := writeFile(t, dir, "Categories.csv", "C1|Dairy\n")

	s, err := Load(pcPath, catPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Products() != 2 {
		t.Errorf("Products() = %d, want 2", s.Products())
	}
}
