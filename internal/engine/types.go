// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package engine

// CountEntry is one (key, count) pair in a top-N list. Lists are
// ordered instead of returned as maps so JSON output preserves ranking.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RatioEntry is one (key, ratio) pair, ratio in [0, 1] rounded to four
// decimals.
type RatioEntry struct {
	Key   string  `json:"key"`
	Ratio float64 `json:"ratio"`
}

// Summary is the executive KPI set over the current snapshot.
type Summary struct {
	Generation        int64 `json:"generation"`
	TotalUnits        int   `json:"total_units"`
	NumTransactions   int   `json:"num_transactions"`
	DistinctCustomers int   `json:"distinct_customers"`
	DistinctProducts  int   `json:"distinct_products"`
	RuleCount         int   `json:"rule_count"`

	TopProducts  []CountEntry `json:"top_products"`
	TopCustomers []CountEntry `json:"top_customers"`
	PeakDays     []CountEntry `json:"peak_days"`

	// TopCategories ranks categories by share of exploded item volume.
	// Items without a catalog mapping are shown under the explicit
	// "no category" display label.
	TopCategories []RatioEntry `json:"top_categories_relative_volume"`
}

// TimeBucket is one period of the transaction time series.
type TimeBucket struct {
	Period       string `json:"period"`
	Transactions int    `json:"transactions"`
	TotalItems   int    `json:"total_items"`
}

// DescribeStats summarizes one numeric series the way a boxplot needs:
// five-number summary plus mean and sample standard deviation.
type DescribeStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Distribution is a basket-size distribution grouped by customer or by
// category. Series order matches the sorted group keys so output is
// deterministic.
type Distribution struct {
	By       string        `json:"by"`
	Series   []float64     `json:"series"`
	Describe DescribeStats `json:"describe"`
}

// Correlation is the Pearson correlation matrix over the customer
// feature columns. Matrix[i][j] is the correlation between Columns[i]
// and Columns[j], rounded to four decimals.
type Correlation struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}
