package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qiyanche/book-price-analysis-project/models"
)

// csvHeader is the column order of the cleaned CSV artifact.
var csvHeader = []string{
	"snapshot_time", "site", "product_id", "name", "category",
	"price", "orig_price", "currency", "availability", "url", "source_url",
}

// DatasetWriter persists the cleaned dataset as one whole artifact. Writes
// overwrite any previous artifact; there is no append mode.
type DatasetWriter interface {
	Write(records []models.CleanRecord) error
	Close() error
	Validate() error
}

// CSVWriter writes the cleaned dataset as a flat CSV with a header row.
type CSVWriter struct {
	file *os.File
}

// NewCSVWriter creates the output file (and its directory) and writes the
// header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{file: f}, nil
}

// Write appends all records below the header.
func (cw *CSVWriter) Write(records []models.CleanRecord) error {
	writer := csv.NewWriter(cw.file)
	for i := range records {
		record := &records[i]
		row := []string{
			record.TimestampString(),
			record.Site,
			record.ProductID,
			record.Name,
			record.Category,
			formatPrice(record.Price),
			formatPrice(record.OrigPrice),
			record.Currency,
			record.Availability,
			record.URL,
			record.SourceURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close closes the file handle.
func (cw *CSVWriter) Close() error {
	return cw.file.Close()
}

// Validate ensures the file holds more than the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes the cleaned dataset as one indented JSON array, one
// object per record.
type JSONWriter struct {
	file *os.File
}

// NewJSONWriter creates the output file and its directory.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}
	return &JSONWriter{file: f}, nil
}

// Write encodes the full record array.
func (jw *JSONWriter) Write(records []models.CleanRecord) error {
	if records == nil {
		records = []models.CleanRecord{}
	}
	encoder := json.NewEncoder(jw.file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode json records: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// DualWriter persists the cleaned dataset as both the structured JSON and
// the flat CSV artifact.
type DualWriter struct {
	jsonWriter *JSONWriter
	csvWriter  *CSVWriter
}

// NewDualWriter creates both underlying writers.
func NewDualWriter(jsonPath, csvPath string) (*DualWriter, error) {
	jsonWriter, err := NewJSONWriter(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("create json writer: %w", err)
	}
	csvWriter, err := NewCSVWriter(csvPath)
	if err != nil {
		jsonWriter.Close()
		return nil, fmt.Errorf("create csv writer: %w", err)
	}
	return &DualWriter{jsonWriter: jsonWriter, csvWriter: csvWriter}, nil
}

// Write writes the records to both artifacts.
func (dw *DualWriter) Write(records []models.CleanRecord) error {
	if err := dw.jsonWriter.Write(records); err != nil {
		return err
	}
	return dw.csvWriter.Write(records)
}

// Close closes both writers, reporting the first failure.
func (dw *DualWriter) Close() error {
	jsonErr := dw.jsonWriter.Close()
	csvErr := dw.csvWriter.Close()
	if jsonErr != nil {
		return jsonErr
	}
	return csvErr
}

// Validate validates both artifacts.
func (dw *DualWriter) Validate() error {
	if err := dw.jsonWriter.Validate(); err != nil {
		return err
	}
	return dw.csvWriter.Validate()
}

func formatPrice(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
