package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qiyanche/book-price-analysis-project/models"
)

func sampleRecords() []models.CleanRecord {
	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.CleanRecord{
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
		{
			Site:         "books",
			ProductID:    "tipping-the-velvet_999",
			Name:         "Tipping the Velvet",
			Price:        floatPtr(53.74),
			Currency:     "GBP",
			Availability: "Unknown",
			URL:          "http://books.toscrape.com/catalogue/tipping-the-velvet_999/index.html",
			SourceURL:    "http://books.toscrape.com/catalogue/page-1.html",
		},
	}
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if rows[0][0] != "snapshot_time" || rows[0][5] != "price" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2024-05-01T10:00:00Z" {
		t.Fatalf("timestamp rendered as %q", rows[1][0])
	}
	if rows[1][5] != "51.77" {
		t.Fatalf("price rendered as %q", rows[1][5])
	}
	if rows[2][0] != "" {
		t.Fatalf("nil timestamp should render empty, got %q", rows[2][0])
	}
	if rows[1][6] != "" {
		t.Fatalf("nil orig_price should render empty, got %q", rows[1][6])
	}
}

func TestJSONWriterWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books_clean.json")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}

	var decoded []models.CleanRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("records=%d, want 2", len(decoded))
	}
	if decoded[0].SnapshotTime == nil || decoded[0].TimestampString() != "2024-05-01T10:00:00Z" {
		t.Fatalf("timestamp did not roundtrip: %v", decoded[0].SnapshotTime)
	}
	if decoded[1].SnapshotTime != nil {
		t.Fatalf("nil timestamp should decode as nil")
	}
	if decoded[0].Price == nil || *decoded[0].Price != 51.77 {
		t.Fatalf("price did not roundtrip: %v", decoded[0].Price)
	}
}

func TestDualWriterWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "books_clean.json")
	csvPath := filepath.Join(dir, "prices.csv")

	writer, err := NewDualWriter(jsonPath, csvPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, path := range []string{jsonPath, csvPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

func TestWritersCreateOutputDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "processed", "prices.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer in nested dir: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}
