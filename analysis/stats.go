// Package analysis computes descriptive statistics over the cleaned dataset
// and persists them as the summary and per-product metrics artifacts.
package analysis

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/qiyanche/book-price-analysis-project/models"
)

// ComputeGlobalStats summarises a non-empty set of prices: count, mean,
// median, sample standard deviation, min, max, and the 25th/75th
// percentiles. Callers filter out null prices and skip empty input.
// A single price yields a standard deviation of 0.
func ComputeGlobalStats(prices []float64) models.GlobalStats {
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	// The sample standard deviation needs at least two observations;
	// stat.StdDev returns NaN below that, which JSON cannot encode.
	std := 0.0
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return models.GlobalStats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: percentile(sorted, 50),
		Std:    std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    percentile(sorted, 25),
		P75:    percentile(sorted, 75),
	}
}

// percentile linearly interpolates between the two order statistics
// straddling rank p*(n-1). Input must be sorted and non-empty.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// ComputeProductMetrics groups records by (product_id, name) and aggregates
// observation count, min, max, and mean price per group. Records with a null
// price are excluded before any statistic is taken. Groups are returned in
// ascending key order.
func ComputeProductMetrics(records []models.CleanRecord) []models.ProductMetrics {
	type accumulator struct {
		metrics models.ProductMetrics
		sum     float64
	}

	groups := make(map[string]*accumulator)
	for i := range records {
		record := &records[i]
		if record.Price == nil {
			continue
		}
		price := *record.Price

		key := record.ProductID + "\x1f" + record.Name
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{metrics: models.ProductMetrics{
				ProductID: record.ProductID,
				Name:      record.Name,
				PriceMin:  price,
				PriceMax:  price,
			}}
			groups[key] = acc
		}
		acc.metrics.NObs++
		acc.sum += price
		if price < acc.metrics.PriceMin {
			acc.metrics.PriceMin = price
		}
		if price > acc.metrics.PriceMax {
			acc.metrics.PriceMax = price
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.Compare(keys[i], keys[j]) < 0
	})

	out := make([]models.ProductMetrics, 0, len(keys))
	for _, key := range keys {
		acc := groups[key]
		acc.metrics.PriceMean = acc.sum / float64(acc.metrics.NObs)
		out = append(out, acc.metrics)
	}
	return out
}

// Prices extracts the non-null price values from a record set.
func Prices(records []models.CleanRecord) []float64 {
	prices := make([]float64, 0, len(records))
	for i := range records {
		if records[i].Price != nil {
			prices = append(prices, *records[i].Price)
		}
	}
	return prices
}
