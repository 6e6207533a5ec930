// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/cartfulhq/cartful/internal/catalog"
	"github.com/cartfulhq/cartful/internal/dataset"
)

// topN is the list length for executive summary rankings.
const topN = 10

// Time series granularities.
const (
	LevelDaily   = "daily"
	LevelWeekly  = "weekly"
	LevelMonthly = "monthly"
)

// Distribution groupings.
const (
	ByCustomer = "customer"
	ByCategory = "category"
)

const dayLayout = "2006-01-02"

// summarize computes the executive KPI set over one snapshot. ruleCount
// is passed in because rules live behind their own cache.
func summarize(snap *dataset.Snapshot, ruleCount int) *Summary {
	productCounts := make(map[string]int)
	categoryCounts := make(map[string]int)
	for i := range snap.Exploded {
		ex := &snap.Exploded[i]
		productCounts[ex.ProductCode]++
		key := ex.CategoryID
		if key == "" {
			key = catalog.NoCategoryLabel
		} else {
			key = snap.Catalog.CategoryName(key)
		}
		categoryCounts[key]++
	}

	customerCounts := make(map[string]int)
	dayCounts := make(map[string]int)
	for i := range snap.Transactions {
		tx := &snap.Transactions[i]
		customerCounts[tx.CustomerID]++
		dayCounts[tx.Date.Format(dayLayout)]++
	}

	return &Summary{
		Generation:        snap.Generation,
		TotalUnits:        len(snap.Exploded),
		NumTransactions:   len(snap.Transactions),
		DistinctCustomers: snap.DistinctCustomers(),
		DistinctProducts:  snap.DistinctProducts(),
		RuleCount:         ruleCount,
		TopProducts:       topCounts(productCounts, topN),
		TopCustomers:      topCounts(customerCounts, topN),
		PeakDays:          topCounts(dayCounts, topN),
		TopCategories:     topRatios(categoryCounts, len(snap.Exploded), topN),
	}
}

// timeSeries aggregates transaction and item counts per period. Periods
// sort lexicographically in chronological order for all three layouts.
func timeSeries(snap *dataset.Snapshot, level string) ([]TimeBucket, error) {
	buckets := make(map[string]*TimeBucket)
	for i := range snap.Transactions {
		tx := &snap.Transactions[i]

		var period string
		switch level {
		case LevelDaily:
			period = tx.Date.Format(dayLayout)
		case LevelWeekly:
			year, week := tx.Date.ISOWeek()
			period = isoWeekKey(year, week)
		case LevelMonthly:
			period = tx.Date.Format("2006-01")
		default:
			return nil, &dataset.InvalidParameterError{
				Param:  "level",
				Reason: "must be daily, weekly or monthly",
			}
		}

		b, ok := buckets[period]
		if !ok {
			b = &TimeBucket{Period: period}
			buckets[period] = b
		}
		b.Transactions++
		b.TotalItems += len(tx.Items)
	}

	out := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// basketDistribution summarizes per-customer item totals or per-category
// item volumes.
func basketDistribution(snap *dataset.Snapshot, by string) (*Distribution, error) {
	var series []float64
	switch by {
	case ByCustomer:
		// Features are sorted by customer ID, so the series order is
		// stable across calls.
		series = make([]float64, 0, len(snap.Features))
		for i := range snap.Features {
			series = append(series, float64(snap.Features[i].TotalItems))
		}
	case ByCategory:
		counts := make(map[string]int)
		for i := range snap.Exploded {
			if id := snap.Exploded[i].CategoryID; id != "" {
				counts[id]++
			}
		}
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		series = make([]float64, 0, len(ids))
		for _, id := range ids {
			series = append(series, float64(counts[id]))
		}
	default:
		return nil, &dataset.InvalidParameterError{
			Param:  "by",
			Reason: "must be customer or category",
		}
	}

	return &Distribution{By: by, Series: series, Describe: describe(series)}, nil
}

// correlation computes the Pearson matrix over all customer feature
// columns, basket size included. Constant columns correlate as zero
// with everything except themselves.
func correlation(snap *dataset.Snapshot) *Correlation {
	cols := dataset.FeatureNames(true)
	n := len(snap.Features)

	series := make([][]float64, len(cols))
	for j := range cols {
		series[j] = make([]float64, n)
	}
	for i := range snap.Features {
		v := snap.Features[i].Vector(true)
		for j := range cols {
			series[j][i] = v[j]
		}
	}

	matrix := make([][]float64, len(cols))
	for i := range cols {
		matrix[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			matrix[i][j] = round4(pearson(series[i], series[j]))
		}
	}
	return &Correlation{Columns: cols, Matrix: matrix}
}

// topCounts ranks a count map descending, ties broken by key ascending.
func topCounts(counts map[string]int, limit int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for k, c := range counts {
		out = append(out, CountEntry{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topRatios ranks counts by share of total, rounded to four decimals.
func topRatios(counts map[string]int, total, limit int) []RatioEntry {
	top := topCounts(counts, limit)
	out := make([]RatioEntry, 0, len(top))
	for _, e := range top {
		ratio := 0.0
		if total > 0 {
			ratio = round4(float64(e.Count) / float64(total))
		}
		out = append(out, RatioEntry{Key: e.Key, Ratio: ratio})
	}
	return out
}

// describe computes the five-number summary plus mean and sample
// standard deviation over a series.
func describe(series []float64) DescribeStats {
	n := len(series)
	if n == 0 {
		return DescribeStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, series)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	std := 0.0
	if n > 1 {
		for _, v := range series {
			d := v - mean
			std += d * d
		}
		std = math.Sqrt(std / float64(n-1))
	}

	return DescribeStats{
		Count:  n,
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q1:     percentileSorted(sorted, 0.25),
		Median: percentileSorted(sorted, 0.50),
		Q3:     percentileSorted(sorted, 0.75),
		Max:    sorted[n-1],
	}
}

// percentileSorted interpolates linearly between the two nearest ranks
// of an ascending-sorted series.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// pearson computes the sample correlation coefficient; zero when either
// series is constant.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func isoWeekKey(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}
