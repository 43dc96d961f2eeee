package history

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/storage"
)

// watcherTestEnv sets up a store dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	storeDir := t.TempDir()
	store, err := storage.NewFS(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	return storeDir, store, db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func recorded(db *DB, filename string) bool {
	_, err := db.Get(filename)
	return err == nil
}

func TestWatcher_NewDeckRecorded(t *testing.T) {
	storeDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, storeDir, quietLogger(), func(kind, filename string) {
		mu.Lock()
		events = append(events, kind+":"+filename)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(storeDir, "new.pptx"), []byte("deck bytes"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return recorded(db, "new.pptx")
	}, "new deck not recorded by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.pptx" {
				return true
			}
		}
		return false
	}, "expected created:new.pptx callback")

	// Title falls back to the filename stem for decks dropped in externally.
	d, err := db.Get("new.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if d.Title != "new" {
		t.Errorf("title = %q, want filename stem", d.Title)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	storeDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, storeDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(storeDir, "notes.txt"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if recorded(db, "notes.txt") {
		t.Error("non-deck file should not be recorded")
	}
}

func TestWatcher_DeleteRemovesRow(t *testing.T) {
	storeDir, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(storeDir, "del.pptx"), []byte("bytes"), 0o644)
	Sync(db, store, quietLogger())

	if !recorded(db, "del.pptx") {
		t.Fatal("precondition: deck should be recorded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, storeDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(storeDir, "del.pptx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !recorded(db, "del.pptx")
	}, "deleted deck still recorded")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	storeDir, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(storeDir, "old.pptx"), []byte("bytes"), 0o644)
	Sync(db, store, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, storeDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(storeDir, "old.pptx"), filepath.Join(storeDir, "renamed.pptx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !recorded(db, "old.pptx") && recorded(db, "renamed.pptx")
	}, "rename reconciliation failed: old row should be removed and new deck recorded")
}

func TestSync(t *testing.T) {
	storeDir, store, db := watcherTestEnv(t)

	// A deck on disk but not in history, and a stale row without a file.
	_ = os.WriteFile(filepath.Join(storeDir, "present.pptx"), []byte("bytes"), 0o644)
	_ = db.Record(deck("stale.pptx", time.Now()))

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if !recorded(db, "present.pptx") {
		t.Error("on-disk deck not recorded")
	}
	if recorded(db, "stale.pptx") {
		t.Error("stale row not removed")
	}
}
