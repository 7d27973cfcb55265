// Package pipeline turns raw snapshots into the canonical cleaned dataset:
// snapshot persistence, normalization, cleaning, and the dataset writers.
package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/qiyanche/book-price-analysis-project/models"
)

const snapshotGlob = "snapshot_books_*.json"

// WriteSnapshot persists one scrape run under the raw-data directory as
// snapshot_books_<YYYYMMDD_HHMMSS>.json and returns the path written.
func WriteSnapshot(dir string, snapshot *models.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw directory %q: %w", dir, err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("snapshot_books_%s.json", stamp))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %q: %w", path, err)
	}
	return path, nil
}

// LoadSnapshots reads every snapshot file under dir in lexical order, which
// matches capture order given the timestamped naming. Unreadable or corrupt
// files are logged and skipped rather than failing the run.
func LoadSnapshots(dir string) []models.Snapshot {
	paths, err := filepath.Glob(filepath.Join(dir, snapshotGlob))
	if err != nil {
		slog.Warn("bad snapshot glob", slog.String("dir", dir), slog.Any("error", err))
		return nil
	}
	sort.Strings(paths)

	var snapshots []models.Snapshot
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable snapshot", slog.String("path", path), slog.Any("error", err))
			continue
		}
		var snapshot models.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			slog.Warn("skipping corrupt snapshot", slog.String("path", path), slog.Any("error", err))
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}
