package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// EventCallback is called after a watcher-driven history change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, filename string)

// Watch starts an fsnotify watcher on the deck store root and keeps history
// rows in sync with decks added or removed outside the API until ctx is
// cancelled. It calls cb (if non-nil) after each successful mutation.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// rows whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, storeRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(storeRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", storeRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, storage.DeckExtension) {
				continue
			}
			rel, relErr := filepath.Rel(storeRoot, ev.Name)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if err := recordFromDisk(db, store, rel); err != nil {
					logger.Warn("watcher: record failed",
						slog.String("filename", rel), slog.String("error", err.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: recorded", slog.String("filename", rel), slog.String("op", kind))
				if cb != nil {
					cb(kind, rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if err := db.Delete(rel); err != nil {
					logger.Warn("watcher: delete failed",
						slog.String("filename", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("filename", rel))
				if cb != nil {
					cb("deleted", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// A rename leaves the old path behind with no follow-up
				// event; reconcile against the disk state shortly after.
				scheduleReconcile()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// Sync makes history rows match the decks present in the store: rows gain
// entries for unknown files and lose entries for missing ones. Run once at
// startup before the watcher takes over.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Filename] = struct{}{}
		if _, err := db.Get(m.Filename); err == nil {
			continue
		}
		if err := recordFromDisk(db, store, m.Filename); err != nil {
			logger.Warn("sync: record failed",
				slog.String("filename", m.Filename), slog.String("error", err.Error()))
		}
	}

	recorded, err := db.AllFilenames()
	if err != nil {
		return err
	}
	for f := range recorded {
		if _, ok := onDisk[f]; !ok {
			_ = db.Delete(f)
		}
	}
	return nil
}

func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	recorded, err := db.AllFilenames()
	if err != nil {
		logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
		return
	}
	for f := range recorded {
		if _, err := store.Read(f); err != nil {
			if delErr := db.Delete(f); delErr == nil && cb != nil {
				cb("deleted", f)
			}
		}
	}
}

// recordFromDisk upserts a row from on-disk state alone. Title and provider
// are unknown for decks dropped into the store outside the API; the title
// falls back to the filename stem.
func recordFromDisk(db *DB, store storage.Provider, filename string) error {
	data, err := store.Read(filename)
	if err != nil {
		return err
	}
	return db.Record(models.Deck{
		Filename:  filename,
		Title:     strings.TrimSuffix(filepath.Base(filename), storage.DeckExtension),
		Checksum:  checksum.Sum(data),
		SizeBytes: int64(len(data)),
		CreatedAt: time.Now(),
	})
}
