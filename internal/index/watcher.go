package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, path string)

// Watch keeps the index in step with post files edited on disk until ctx is
// cancelled. New directories are watched as they appear. Renames delete the
// old entry and schedule a reconciliation pass against the vault listing.
func Watch(ctx context.Context, db PostIndex, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, vaultRoot); err != nil {
		return err
	}

	w := &watcher{fw: fw, db: db, store: store, root: vaultRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", vaultRoot))
	return w.run(ctx)
}

type watcher struct {
	fw     *fsnotify.Watcher
	db     PostIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback

	reconcile *time.Timer
}

func (w *watcher) run(ctx context.Context) error {
	defer func() {
		if w.reconcile != nil {
			w.reconcile.Stop()
		}
	}()

	for {
		var reconcileCh <-chan time.Time
		if w.reconcile != nil {
			reconcileCh = w.reconcile.C
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile = nil
			w.reconcileAll()

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addDirsRecursive(w.fw, ev.Name); err != nil {
				w.logger.Warn("watcher: add new dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			w.indexDir(ev.Name)
			return
		}
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !storage.IsPostPath(rel) {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := EventUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = EventCreated
		}
		w.index(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)

	case ev.Op&fsnotify.Rename != 0:
		// Rename fires on the old path only; the new path arrives as a
		// Create when it stays under a watched dir.
		w.remove(rel)
		w.scheduleReconcile()
	}
}

func (w *watcher) index(rel, kind string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(w.db, rel, data); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.notify(kind, rel)
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeletePost(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify(EventDeleted, rel)
}

func (w *watcher) notify(kind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

func (w *watcher) scheduleReconcile() {
	if w.reconcile == nil {
		w.reconcile = time.NewTimer(reconcileDelay)
		return
	}
	w.reconcile.Reset(reconcileDelay)
}

// reconcileAll drops index entries whose files are gone and indexes files
// whose checksum differs from the stored one.
func (w *watcher) reconcileAll() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if stored, ok := checksums[p]; ok && stored == cs {
			continue
		}
		kind := EventCreated
		if _, ok := checksums[p]; ok {
			kind = EventUpdated
		}
		w.index(p, kind)
	}
}

func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil || !storage.IsPostPath(filepath.ToSlash(rel)) {
			return nil
		}
		w.index(filepath.ToSlash(rel), EventCreated)
		return nil
	})
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
