package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qiyanche/book-price-analysis-project/models"
)

func TestWriteAndLoadSnapshotRoundtrip(t *testing.T) {
	dir := t.TempDir()

	snapshot := &models.Snapshot{
		SnapshotTime: "2024-05-01T10:00:00Z",
		Items: []models.RawItem{
			rawItem("A Light in the Attic",
				"http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
				floatPtr(51.77)),
		},
	}

	path, err := WriteSnapshot(dir, snapshot)
	if err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "snapshot_books_") {
		t.Fatalf("unexpected snapshot filename %q", path)
	}

	loaded := LoadSnapshots(dir)
	if len(loaded) != 1 {
		t.Fatalf("loaded=%d, want 1", len(loaded))
	}
	if loaded[0].SnapshotTime != snapshot.SnapshotTime {
		t.Fatalf("snapshot time=%q, want %q", loaded[0].SnapshotTime, snapshot.SnapshotTime)
	}
	if len(loaded[0].Items) != 1 || loaded[0].Items[0].Name != "A Light in the Attic" {
		t.Fatalf("items did not roundtrip: %+v", loaded[0].Items)
	}
	if loaded[0].Items[0].Price == nil || *loaded[0].Items[0].Price != 51.77 {
		t.Fatalf("price did not roundtrip: %v", loaded[0].Items[0].Price)
	}
}

func TestLoadSnapshotsEmptyDir(t *testing.T) {
	if got := LoadSnapshots(t.TempDir()); len(got) != 0 {
		t.Fatalf("loaded=%d, want 0 for empty directory", len(got))
	}
}

func TestLoadSnapshotsSkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "snapshot_books_20240501_100000.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	good := &models.Snapshot{SnapshotTime: "2024-05-02T10:00:00Z"}
	if _, err := WriteSnapshot(dir, good); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	loaded := LoadSnapshots(dir)
	if len(loaded) != 1 {
		t.Fatalf("loaded=%d, want 1 (corrupt file skipped)", len(loaded))
	}
	if loaded[0].SnapshotTime != good.SnapshotTime {
		t.Fatalf("wrong snapshot survived: %q", loaded[0].SnapshotTime)
	}
}

func TestLoadSnapshotsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	if got := LoadSnapshots(dir); len(got) != 0 {
		t.Fatalf("loaded=%d, want 0 (non-snapshot files ignored)", len(got))
	}
}
