package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neilberkman/storycards/internal/core/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	_ = tmpfile.Close()
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	database, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestNew(t *testing.T) {
	database := newTestDB(t)

	var count int
	err := database.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='exports'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exports table, got %d", count)
	}
}

func TestNew_WALMode(t *testing.T) {
	database := newTestDB(t)

	var journalMode string
	if err := database.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected WAL mode, got %s", journalMode)
	}
}

func TestNew_BusyTimeout(t *testing.T) {
	database := newTestDB(t)

	var ms int
	if err := database.conn.QueryRow("PRAGMA busy_timeout").Scan(&ms); err != nil {
		t.Fatalf("Failed to query busy_timeout: %v", err)
	}
	if ms != int(busyTimeout.Milliseconds()) {
		t.Errorf("busy_timeout = %d, want %d", ms, busyTimeout.Milliseconds())
	}
}

func TestNew_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	database, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = database.Close() }()

	if database.Path() != path {
		t.Errorf("Path() = %q, want %q", database.Path(), path)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	database := newTestDB(t)

	// Running again must not try to add the column twice
	if err := database.runMigrations(); err != nil {
		t.Fatalf("runMigrations() second run error = %v", err)
	}

	var n int
	err := database.conn.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('exports') WHERE name='prompt'`).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("prompt column count = %d", n)
	}
}

func TestRecordExport(t *testing.T) {
	database := newTestDB(t)

	rec := &models.ExportRecord{
		SourceName:     "lecture.pdf",
		ParagraphCount: 7,
		OutputPath:     "/home/me/flashcards.pptx",
		ByteSize:       2048,
		Prompt:         "keep it short",
	}
	if err := database.RecordExport(rec); err != nil {
		t.Fatalf("RecordExport() error = %v", err)
	}
	if rec.ID == 0 {
		t.Error("RecordExport() did not set ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("RecordExport() did not set CreatedAt")
	}

	got, err := database.ListExports(ExportFilter{})
	if err != nil {
		t.Fatalf("ListExports() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	r := got[0]
	if r.SourceName != "lecture.pdf" || r.ParagraphCount != 7 || r.OutputPath != "/home/me/flashcards.pptx" ||
		r.ByteSize != 2048 || r.Prompt != "keep it short" {
		t.Errorf("record = %+v", r)
	}
}

func TestRecordExport_Invalid(t *testing.T) {
	database := newTestDB(t)
	if err := database.RecordExport(&models.ExportRecord{}); err == nil {
		t.Error("RecordExport() accepted an invalid record")
	}
}

func TestListExports_Filters(t *testing.T) {
	database := newTestDB(t)

	now := time.Now()
	seed := []models.ExportRecord{
		{SourceName: "old.pdf", ParagraphCount: 1, OutputPath: "/a.pptx", CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{SourceName: "mid.pdf", ParagraphCount: 2, OutputPath: "/b.pptx", CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{SourceName: "new.pdf", ParagraphCount: 3, OutputPath: "/c.pptx", CreatedAt: now.Add(-time.Hour)},
		{SourceName: "new.pdf", ParagraphCount: 4, OutputPath: "/d.pptx", CreatedAt: now.Add(-time.Minute)},
	}
	for i := range seed {
		if err := database.RecordExport(&seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter ExportFilter
		want   []string
	}{
		{"all newest first", ExportFilter{}, []string{"/d.pptx", "/c.pptx", "/b.pptx", "/a.pptx"}},
		{"limit", ExportFilter{Limit: 2}, []string{"/d.pptx", "/c.pptx"}},
		{"after", ExportFilter{After: now.Add(-3 * 24 * time.Hour)}, []string{"/d.pptx", "/c.pptx", "/b.pptx"}},
		{"before", ExportFilter{Before: now.Add(-24 * time.Hour)}, []string{"/b.pptx", "/a.pptx"}},
		{"source", ExportFilter{Source: "new.pdf"}, []string{"/d.pptx", "/c.pptx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := database.ListExports(tt.filter)
			if err != nil {
				t.Fatalf("ListExports() error = %v", err)
			}
			var paths []string
			for _, r := range got {
				paths = append(paths, r.OutputPath)
			}
			if len(paths) != len(tt.want) {
				t.Fatalf("got %v, want %v", paths, tt.want)
			}
			for i := range paths {
				if paths[i] != tt.want[i] {
					t.Errorf("got %v, want %v", paths, tt.want)
					break
				}
			}
		})
	}
}
