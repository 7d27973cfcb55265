package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/qiyanche/book-price-analysis-project/models"
)

// Cleaner flattens raw snapshots through the normalizer and applies the
// order-sensitive cleaning steps: drop rows missing critical fields, fill
// defaults, deduplicate, coerce types, and sort for reproducible output.
type Cleaner struct {
	normalizer    *Normalizer
	dedupeMaxSize int
}

// Report counts what one cleaning pass did to its input rows.
type Report struct {
	InputRows     int
	Dropped       int
	Duplicates    int
	BadTimestamps int
	Retained      int
}

// NewCleaner builds a cleaner around the given normalizer. dedupeMaxSize
// bounds the composite-key cache used for deduplication.
func NewCleaner(normalizer *Normalizer, dedupeMaxSize int) *Cleaner {
	return &Cleaner{
		normalizer:    normalizer,
		dedupeMaxSize: dedupeMaxSize,
	}
}

// Clean produces the canonical record sequence for a set of snapshots.
// Deduplication keeps the first occurrence of each (site, url, snapshot_time)
// key in input order; the final sort is ascending by (site, product_id,
// snapshot_time). Clean never fails: data-quality problems are dropped or
// coerced and counted in the report.
func (c *Cleaner) Clean(snapshots []models.Snapshot) ([]models.CleanRecord, Report, error) {
	var report Report

	seen, err := lru.New[string, struct{}](c.dedupeMaxSize)
	if err != nil {
		return nil, report, fmt.Errorf("create dedupe cache: %w", err)
	}

	var records []models.CleanRecord
	for _, snapshot := range snapshots {
		for _, item := range snapshot.Items {
			report.InputRows++
			record := c.normalizer.Normalize(item, snapshot.SnapshotTime)

			if record.Name == "" || record.Price == nil {
				report.Dropped++
				continue
			}
			if record.Availability == "" {
				record.Availability = "Unknown"
			}

			// Keyed on the timestamp as captured, so snapshots whose
			// stamps fail coercion do not collapse into one another.
			key := dedupeKey(&record, snapshot.SnapshotTime)
			if seen.Contains(key) {
				report.Duplicates++
				continue
			}
			seen.Add(key, struct{}{})

			if record.SnapshotTime == nil {
				report.BadTimestamps++
			}
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Site != records[j].Site {
			return records[i].Site < records[j].Site
		}
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].TimestampString() < records[j].TimestampString()
	})

	report.Retained = len(records)
	slog.Info("cleaning pass finished",
		slog.Int("input_rows", report.InputRows),
		slog.Int("dropped", report.Dropped),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("bad_timestamps", report.BadTimestamps),
		slog.Int("retained", report.Retained),
	)
	return records, report, nil
}

func dedupeKey(record *models.CleanRecord, snapshotTime string) string {
	return strings.Join([]string{record.Site, record.URL, snapshotTime}, "\x1f")
}
