package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/qiyanche/book-price-analysis-project/models"
)

// LoadRecords reads the cleaned CSV artifact back into records. Columns are
// resolved by header name so the loader tolerates column reordering.
// Unparseable prices and timestamps load as nil, mirroring the cleaner's
// coercion policy.
func LoadRecords(path string) ([]models.CleanRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cleaned csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cleaned csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	column := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		column[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := column[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]models.CleanRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, models.CleanRecord{
			SnapshotTime: parseTimestamp(field(row, "snapshot_time")),
			Site:         field(row, "site"),
			ProductID:    field(row, "product_id"),
			Name:         field(row, "name"),
			Category:     field(row, "category"),
			Price:        parsePrice(field(row, "price")),
			OrigPrice:    parsePrice(field(row, "orig_price")),
			Currency:     field(row, "currency"),
			Availability: field(row, "availability"),
			URL:          field(row, "url"),
			SourceURL:    field(row, "source_url"),
		})
	}
	return records, nil
}

// WriteSummary persists the global statistics as an indented JSON document.
func WriteSummary(path string, stats models.GlobalStats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	payload := map[string]models.GlobalStats{"global_stats": stats}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary %q: %w", path, err)
	}
	return nil
}

// WriteProductMetrics persists the per-product metrics as a CSV artifact.
func WriteProductMetrics(path string, metrics []models.ProductMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics csv: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"product_id", "name", "n_obs", "price_min", "price_max", "price_mean"}); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			m.ProductID,
			m.Name,
			strconv.Itoa(m.NObs),
			strconv.FormatFloat(m.PriceMin, 'f', -1, 64),
			strconv.FormatFloat(m.PriceMax, 'f', -1, 64),
			strconv.FormatFloat(m.PriceMean, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write metrics record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush metrics csv: %w", err)
	}
	return nil
}

func parsePrice(text string) *float64 {
	if text == "" {
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseTimestamp(text string) *time.Time {
	if text == "" {
		return nil
	}
	parsed, err := time.Parse(models.TimestampLayout, text)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
