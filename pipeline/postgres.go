package pipeline

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/qiyanche/book-price-analysis-project/models"
)

// PostgresWriter mirrors the cleaned dataset into a Postgres table for ad-hoc
// querying. It is an optional sink: the clean stage only constructs one when
// a DSN is configured.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, waits for the database to become
// reachable, and runs the schema migration.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS clean_records (
			id            SERIAL PRIMARY KEY,
			snapshot_time TIMESTAMPTZ,
			site          VARCHAR(64)   NOT NULL,
			product_id    TEXT          NOT NULL DEFAULT '',
			name          TEXT          NOT NULL,
			category      TEXT          NOT NULL DEFAULT '',
			price         NUMERIC(10,2) NOT NULL,
			orig_price    NUMERIC(10,2),
			currency      VARCHAR(8)    NOT NULL,
			availability  TEXT          NOT NULL DEFAULT '',
			url           TEXT          NOT NULL,
			source_url    TEXT          NOT NULL DEFAULT '',
			UNIQUE (site, url, snapshot_time)
		);

		CREATE INDEX IF NOT EXISTS idx_clean_records_product ON clean_records(product_id);
		CREATE INDEX IF NOT EXISTS idx_clean_records_price   ON clean_records(price);
	`)
	return err
}

// Write batch-inserts all records; rows already present under the composite
// key are left untouched.
func (pw *PostgresWriter) Write(records []models.CleanRecord) error {
	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.CleanRecord) error {
	const fields = 11
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*fields)

	for idx := range batch {
		record := &batch[idx]
		base := idx * fields
		placeholders := make([]string, fields)
		for f := 0; f < fields; f++ {
			placeholders[f] = fmt.Sprintf("$%d", base+f+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var snapshotTime interface{}
		if record.SnapshotTime != nil {
			snapshotTime = *record.SnapshotTime
		}
		valueArgs = append(valueArgs,
			snapshotTime, record.Site, record.ProductID, record.Name,
			record.Category, record.Price, record.OrigPrice, record.Currency,
			record.Availability, record.URL, record.SourceURL,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO clean_records
			(snapshot_time, site, product_id, name, category, price,
			 orig_price, currency, availability, url, source_url)
		VALUES %s
		ON CONFLICT (site, url, snapshot_time) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database handle.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Validate pings the database.
func (pw *PostgresWriter) Validate() error {
	return pw.db.Ping()
}
