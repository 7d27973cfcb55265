package analysis

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qiyanche/book-price-analysis-project/models"
	"github.com/qiyanche/book-price-analysis-project/pipeline"
)

func TestLoadRecordsRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")

	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []models.CleanRecord{
		{
			SnapshotTime: &stamp,
			Site:         "books",
			ProductID:    "a-light-in-the-attic_1000",
			Name:         "A Light in the Attic",
			Price:        floatPtr(51.77),
			Currency:     "GBP",
			Availability: "In stock (19 available)",
			URL:          "http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
			SourceURL:    "http://books.toscrape.com/catalogue/page-1.html",
		},
	}

	writer, err := pipeline.NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	loaded, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("records=%d, want 1", len(loaded))
	}

	got := loaded[0]
	if got.ProductID != records[0].ProductID || got.Name != records[0].Name {
		t.Fatalf("identity fields did not roundtrip: %+v", got)
	}
	if got.Price == nil || *got.Price != 51.77 {
		t.Fatalf("price did not roundtrip: %v", got.Price)
	}
	if got.OrigPrice != nil {
		t.Fatalf("empty orig_price should load as nil")
	}
	if got.SnapshotTime == nil || !got.SnapshotTime.Equal(stamp) {
		t.Fatalf("timestamp did not roundtrip: %v", got.SnapshotTime)
	}
}

func TestLoadRecordsMissingFile(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "summary_stats.json")

	stats := models.GlobalStats{Count: 3, Mean: 2, Median: 2, Std: 1, Min: 1, Max: 3, P25: 1.5, P75: 2.5}
	if err := WriteSummary(path, stats); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}

	var decoded map[string]models.GlobalStats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if decoded["global_stats"] != stats {
		t.Fatalf("summary=%+v, want %+v", decoded["global_stats"], stats)
	}
}

func TestWriteSummarySinglePrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "summary_stats.json")

	stats := ComputeGlobalStats([]float64{51.77})
	if err := WriteSummary(path, stats); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}

	var decoded map[string]models.GlobalStats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got := decoded["global_stats"]; got.Count != 1 || got.Std != 0 {
		t.Fatalf("summary=%+v, want count 1 and std 0", got)
	}
}

func TestWriteProductMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "metrics_by_product.csv")

	metrics := []models.ProductMetrics{
		{ProductID: "a_1", Name: "Alpha", NObs: 2, PriceMin: 10, PriceMax: 14, PriceMean: 12},
	}
	if err := WriteProductMetrics(path, metrics); err != nil {
		t.Fatalf("write metrics: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open metrics: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(rows))
	}
	if rows[0][0] != "product_id" || rows[0][2] != "n_obs" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "a_1" || rows[1][2] != "2" || rows[1][5] != "12" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}
