// Package models defines the record types shared by the pipeline stages.
package models

import "time"

// TimestampLayout is the canonical second-precision UTC form used in every
// persisted artifact.
const TimestampLayout = "2006-01-02T15:04:05Z"

// RawItem is one product entry as parsed from a listing page. Price is nil
// when the price text was absent or unparseable; Name and Availability may
// still contain markup at this point.
type RawItem struct {
	Site         string   `json:"site"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Price        *float64 `json:"price"`
	OrigPrice    *float64 `json:"orig_price"`
	Currency     string   `json:"currency"`
	Availability string   `json:"availability"`
	Category     string   `json:"category"`
	SourceURL    string   `json:"source_url"`
}

// Snapshot bundles one scrape run's items with its capture instant.
// SnapshotTime stays the captured RFC3339 string; the cleaner coerces it
// into a typed timestamp. A snapshot is immutable once written.
type Snapshot struct {
	SnapshotTime string    `json:"snapshot_time"`
	Items        []RawItem `json:"items"`
}

// CleanRecord is one row of the canonical cleaned dataset. SnapshotTime is
// nil when the snapshot carried an unparseable capture time; ProductID is
// empty when the product URL does not match the catalog path shape.
type CleanRecord struct {
	SnapshotTime *time.Time `json:"snapshot_time"`
	Site         string     `json:"site"`
	ProductID    string     `json:"product_id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Price        *float64   `json:"price"`
	OrigPrice    *float64   `json:"orig_price"`
	Currency     string     `json:"currency"`
	Availability string     `json:"availability"`
	URL          string     `json:"url"`
	SourceURL    string     `json:"source_url"`
}

// TimestampString renders the capture time in the canonical layout, or the
// empty string when the timestamp could not be coerced.
func (r *CleanRecord) TimestampString() string {
	if r.SnapshotTime == nil {
		return ""
	}
	return r.SnapshotTime.UTC().Format(TimestampLayout)
}

// GlobalStats holds descriptive statistics over all non-null prices in the
// cleaned dataset. Std is the sample standard deviation (n-1 denominator);
// P25/P75 are linearly interpolated percentiles.
type GlobalStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// ProductMetrics aggregates the price observations of one product across
// snapshots, grouped by (product_id, name).
type ProductMetrics struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	NObs      int     `json:"n_obs"`
	PriceMin  float64 `json:"price_min"`
	PriceMax  float64 `json:"price_max"`
	PriceMean float64 `json:"price_mean"`
}

// ScrapeResult summarises one scrape run for the end-of-run report.
type ScrapeResult struct {
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	ItemCount    int
	RequestCount int
	ErrorCount   int
	ErrorsByType map[string]int
}
