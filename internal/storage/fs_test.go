package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte("PK\x03\x04 fake deck bytes")
	if err := s.Write("deck.pptx", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("deck.pptx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("a/b/c.pptx", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.pptx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("del.pptx", []byte("bye"))
	if err := s.Delete("del.pptx"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.pptx"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a.pptx", []byte("a"))
	_ = s.Write("sub/b.pptx", []byte("b"))
	_ = s.Write("readme.txt", []byte("not a deck"))

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, m := range items {
		if m.Checksum == "" {
			t.Errorf("missing checksum for %s", m.Filename)
		}
		if m.SizeBytes == 0 {
			t.Errorf("missing size for %s", m.Filename)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.pptx",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Verify that if we read during a write the old content is intact
	// (the rename is atomic on POSIX).
	s := tempStore(t)
	original := []byte("original content")
	_ = s.Write("atomic.pptx", original)

	// Overwrite with new content.
	updated := []byte("updated content")
	if err := s.Write("atomic.pptx", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.pptx")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".ansuz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/ansuz-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "ansuz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
