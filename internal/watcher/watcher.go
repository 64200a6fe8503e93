// Package watcher uploads images as they appear in a directory.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/pictnote/internal/storage"
)

// DefaultSettle is how long a file must stay unchanged before it is handed
// off.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one settled image. Handlers run on the watcher
// goroutine, one at a time.
type Handler func(ctx context.Context, path string)

// Watcher reports new and rewritten image files under a storage root.
type Watcher struct {
	store  storage.Provider
	settle time.Duration
	logger *slog.Logger
	handle Handler
	// ScanExisting hands off the images already present when Run starts.
	ScanExisting bool
}

// New creates a Watcher. A non-positive settle selects DefaultSettle.
func New(store storage.Provider, settle time.Duration, logger *slog.Logger, handle Handler) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{store: store, settle: settle, logger: logger, handle: handle}
}

// Run watches the root and its subdirectories until ctx is cancelled.
//
// Each create or write event restarts the settle period of its file. New
// directories are added to the watch list and their images queued.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.store.Root()
	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]time.Time)
	if w.ScanExisting {
		w.queueDir(root, pending)
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if len(pending) == 0 {
			return
		}
		if timer == nil {
			timer = time.NewTimer(w.settle)
			timerCh = timer.C
		} else {
			timer.Reset(w.settle)
		}
	}
	schedule()

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for _, p := range w.due(pending, time.Now()) {
				if ctx.Err() != nil {
					break
				}
				w.handle(ctx, p)
			}
			schedule()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			path := ev.Name

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || storage.Hidden(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, path); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", path),
							slog.String("error", addErr.Error()))
					}
					w.queueDir(path, pending)
					schedule()
					continue
				}
			}

			if !storage.IsImage(path) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[path] = time.Now()
				schedule()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, path)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// due removes and returns, sorted, the pending paths whose last event is at
// least one settle period old.
func (w *Watcher) due(pending map[string]time.Time, now time.Time) []string {
	var out []string
	for p, last := range pending {
		if now.Sub(last) >= w.settle {
			out = append(out, p)
			delete(pending, p)
		}
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) queueDir(dir string, pending map[string]time.Time) {
	rel, err := filepath.Rel(w.store.Root(), dir)
	if err != nil {
		return
	}
	files, err := w.store.List(rel)
	if err != nil {
		w.logger.Warn("watcher: list failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	// Backdated so existing files are handed off on the first tick.
	settled := time.Now().Add(-w.settle)
	for _, f := range files {
		pending[f.AbsPath] = settled
	}
}

// addDirsRecursive adds root and all its visible subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
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
		return w.Add(path)
	})
}
