// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"sort"

	"github.com/cartfulhq/cartful/internal/catalog"
)

// buildExploded derives one ExplodedItem per (transaction, item) pair and
// resolves each product's category. This is a pure derived view over the
// transaction slice; it is rebuilt on every refresh, never stored as a
// source of truth.
func buildExploded(transactions []Transaction, cat *catalog.Store) []ExplodedItem {
	total := 0
	for i := range transactions {
		total += len(transactions[i].Items)
	}

	exploded := make([]ExplodedItem, 0, total)
	for i := range transactions {
		tx := &transactions[i]
		for _, code := range tx.Items {
			item := ExplodedItem{
				TxIndex:     i,
				Date:        tx.Date,
				StoreID:     tx.StoreID,
				CustomerID:  tx.CustomerID,
				ProductCode: code,
			}
			if id, ok := cat.CategoryOf(code); ok {
				item.CategoryID = id
			}
			exploded = append(exploded, item)
		}
	}
	return exploded
}

// buildFeatures aggregates transactions and exploded items into one
// CustomerFeatures per customer. Distinct products and categories use set
// cardinality; items without a category mapping do not contribute to
// distinct_categories.
func buildFeatures(transactions []Transaction, exploded []ExplodedItem) ([]CustomerFeatures, map[string]int, map[string]map[string]struct{}) {
	type acc struct {
		frequency  int
		totalItems int
		products   map[string]struct{}
		categories map[string]struct{}
	}

	accs := make(map[string]*acc)
	get := func(customerID string) *acc {
		a, ok := accs[customerID]
		if !ok {
			a = &acc{
				products:   make(map[string]struct{}),
				categories: make(map[string]struct{}),
			}
			accs[customerID] = a
		}
		return a
	}

	for i := range transactions {
		a := get(transactions[i].CustomerID)
		a.frequency++
		a.totalItems += len(transactions[i].Items)
	}

	for i := range exploded {
		a := get(exploded[i].CustomerID)
		a.products[exploded[i].ProductCode] = struct{}{}
		if exploded[i].CategoryID != "" {
			a.categories[exploded[i].CategoryID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(accs))
	for id := range accs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	features := make([]CustomerFeatures, 0, len(ids))
	index := make(map[string]int, len(ids))
	items := make(map[string]map[string]struct{}, len(ids))

	for _, id := range ids {
		a := accs[id]
		f := CustomerFeatures{
			CustomerID:         id,
			Frequency:          a.frequency,
			TotalItems:         a.totalItems,
			DistinctProducts:   len(a.products),
			DistinctCategories: len(a.categories),
		}
		if a.frequency > 0 {
			f.AvgBasketSize = float64(a.totalItems) / float64(a.frequency)
		}
		index[id] = len(features)
		features = append(features, f)
		items[id] = a.products
	}

	return features, index, items
}
