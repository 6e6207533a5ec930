// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"time"

	"github.com/cartfulhq/cartful/internal/catalog"
)

// Transaction is one normalized transaction record. Store and customer
// IDs are canonical strings regardless of how the source file spelled
// them; the date is normalized to midnight UTC.
type Transaction struct {
	Date       time.Time `json:"date"`
	StoreID    string    `json:"store_id"`
	CustomerID string    `json:"customer_id"`
	Items      []string  `json:"items"`
}

// ExplodedItem is one (transaction, item) pair, the unit of product-level
// aggregation. CategoryID is empty when the product has no catalog
// mapping; aggregates by category must exclude such items.
type ExplodedItem struct {
	TxIndex     int       `json:"tx_index"`
	Date        time.Time `json:"date"`
	StoreID     string    `json:"store_id"`
	CustomerID  string    `json:"customer_id"`
	ProductCode string    `json:"product_code"`
	CategoryID  string    `json:"category_id,omitempty"`
}

// CustomerFeatures is the per-customer feature vector used for
// segmentation. It is recomputed fully on each refresh, never mutated.
type CustomerFeatures struct {
	CustomerID         string  `json:"customer_id"`
	Frequency          int     `json:"frequency"`
	TotalItems         int     `json:"total_items"`
	DistinctProducts   int     `json:"distinct_products"`
	DistinctCategories int     `json:"distinct_categories"`
	AvgBasketSize      float64 `json:"avg_basket_size"`
}

// FeatureNames returns the clustering feature order. avg_basket_size is
// appended only when requested; by default it is descriptive.
func FeatureNames(includeBasketSize bool) []string {
	names := []string{"frequency", "total_items", "distinct_products", "distinct_categories"}
	if includeBasketSize {
		names = append(names, "avg_basket_size")
	}
	return names
}

// Vector returns the numeric feature vector in FeatureNames order.
func (f CustomerFeatures) Vector(includeBasketSize bool) []float64 {
	v := []float64{
		float64(f.Frequency),
		float64(f.TotalItems),
		float64(f.DistinctProducts),
		float64(f.DistinctCategories),
	}
	if includeBasketSize {
		v = append(v, f.AvgBasketSize)
	}
	return v
}

// Snapshot is one immutable generation of the loaded dataset and its
// derived views. A refresh builds a complete new Snapshot and swaps it in
// atomically; readers always observe one generation in full.
type Snapshot struct {
	Generation int64
	LoadedAt   time.Time

	Catalog      *catalog.Store
	Transactions []Transaction
	Exploded     []ExplodedItem

	// Features is sorted by customer ID for deterministic iteration.
	Features     []CustomerFeatures
	featureIndex map[string]int

	// customerItems maps customer ID to the set of distinct products
	// that customer has ever purchased.
	customerItems map[string]map[string]struct{}

	// DroppedRows counts rows discarded during the load (bad dates,
	// malformed shapes), for observability.
	DroppedRows int

	// SkippedFiles lists files that failed structural validation and
	// were skipped, keyed by path with the failure reason.
	SkippedFiles map[string]string
}

// FeaturesFor returns the feature vector for one customer.
func (s *Snapshot) FeaturesFor(customerID string) (CustomerFeatures, bool) {
	i, ok := s.featureIndex[customerID]
	if !ok {
		return CustomerFeatures{}, false
	}
	return s.Features[i], true
}

// PurchasedBy returns the distinct product set for one customer, or nil
// when the customer has no history. The returned map must not be mutated.
func (s *Snapshot) PurchasedBy(customerID string) map[string]struct{} {
	return s.customerItems[customerID]
}

// DistinctProducts counts distinct product codes across all transactions.
func (s *Snapshot) DistinctProducts() int {
	seen := make(map[string]struct{})
	for i := range s.Exploded {
		seen[s.Exploded[i].ProductCode] = struct{}{}
	}
	return len(seen)
}

// DistinctCustomers counts customers with at least one transaction.
func (s *Snapshot) DistinctCustomers() int {
	return len(s.Features)
}
