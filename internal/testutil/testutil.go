// Package testutil provides shared test helpers for setting up stores and providers.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/moodlog/internal/moodlog"
	"github.com/starford/moodlog/internal/storage"
)

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestSQLite creates a temporary SQLite provider that is closed on cleanup.
func TestSQLite(t *testing.T) storage.Provider {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "moodlog-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFS creates a temporary data directory with a file provider.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore returns a loaded store backed by p, or by an in-memory provider
// when p is nil.
func TestStore(t *testing.T, p storage.Provider) *moodlog.Store {
	t.Helper()
	if p == nil {
		p = storage.NewMemory()
	}
	s := moodlog.New(p, Logger())
	s.Load(context.Background())
	return s
}
