// Package testutil provides shared test helpers for setting up deck stores,
// databases, and template archives.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"testing"

	"github.com/starford/ansuz/internal/history"
	"github.com/starford/ansuz/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary deck store directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	storeDir := t.TempDir()
	store, err := storage.NewFS(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	return storeDir, store
}

// ZipArchive builds an in-memory zip from the given entry map, for use as a
// template .pptx in tests.
func ZipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
