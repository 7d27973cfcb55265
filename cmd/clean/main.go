// Command clean normalizes all raw snapshots into the canonical cleaned
// dataset, persisted as a structured JSON artifact and a flat CSV.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/qiyanche/book-price-analysis-project/config"
	"github.com/qiyanche/book-price-analysis-project/logging"
	"github.com/qiyanche/book-price-analysis-project/pipeline"
)

func main() {
	config.LoadEnv()
	defaultCfg := config.DefaultConfig()

	rawDirDefault := defaultCfg.RawDir
	if value, ok := config.EnvString("CLEAN_RAW_DIR"); ok {
		rawDirDefault = value
	}
	jsonDefault := defaultCfg.CleanJSONFile
	if value, ok := config.EnvString("CLEAN_JSON_OUT"); ok {
		jsonDefault = value
	}
	csvDefault := defaultCfg.CleanCSVFile
	if value, ok := config.EnvString("CLEAN_CSV_OUT"); ok {
		csvDefault = value
	}
	dsnDefault, _ := config.EnvString("POSTGRES_DSN")

	rawDir := flag.String("raw-dir", rawDirDefault, "Directory holding raw snapshot files")
	jsonOut := flag.String("json-out", jsonDefault, "Path of the structured JSON artifact")
	csvOut := flag.String("csv-out", csvDefault, "Path of the flat CSV artifact")
	postgresDSN := flag.String("postgres-dsn", dsnDefault, "Optional Postgres DSN to mirror the cleaned dataset into")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logging.Setup(*verbose)

	cfg := defaultCfg
	cfg.RawDir = *rawDir
	cfg.CleanJSONFile = *jsonOut
	cfg.CleanCSVFile = *csvOut
	cfg.PostgresDSN = *postgresDSN
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	snapshots := pipeline.LoadSnapshots(cfg.RawDir)
	if len(snapshots) == 0 {
		slog.Warn("no snapshot files found, run the scrape stage first",
			slog.String("raw_dir", cfg.RawDir),
		)
		return
	}

	cleaner := pipeline.NewCleaner(
		pipeline.NewNormalizer(cfg.Site, cfg.DefaultCurrency),
		cfg.DedupeMaxSize,
	)
	records, report, err := cleaner.Clean(snapshots)
	if err != nil {
		slog.Error("cleaning failed", slog.Any("error", err))
		os.Exit(1)
	}
	if report.InputRows == 0 {
		slog.Warn("no items found across snapshots, nothing to clean")
		return
	}

	writer, err := pipeline.NewDualWriter(cfg.CleanJSONFile, cfg.CleanCSVFile)
	if err != nil {
		slog.Error("creating dataset writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Write(records); err != nil {
		slog.Error("writing cleaned dataset", slog.Any("error", err))
		writer.Close()
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		writer.Close()
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		slog.Error("closing dataset writer", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.PostgresDSN != "" {
		pg, err := pipeline.NewPostgresWriter(cfg.PostgresDSN)
		if err != nil {
			slog.Error("connecting to postgres", slog.Any("error", err))
			os.Exit(1)
		}
		if err := pg.Write(records); err != nil {
			slog.Error("mirroring cleaned dataset to postgres", slog.Any("error", err))
			pg.Close()
			os.Exit(1)
		}
		if err := pg.Close(); err != nil {
			slog.Error("closing postgres writer", slog.Any("error", err))
		}
		slog.Info("cleaned dataset mirrored to postgres", slog.Int("records", len(records)))
	}

	slog.Info("clean complete",
		slog.Int("input_rows", report.InputRows),
		slog.Int("dropped", report.Dropped),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("retained", report.Retained),
		slog.String("json", cfg.CleanJSONFile),
		slog.String("csv", cfg.CleanCSVFile),
	)
}
