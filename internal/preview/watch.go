package preview

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/uktrade/docsite/internal/logfields"
)

// Watcher reports relevant filesystem changes below a set of roots.
type Watcher struct {
	w      *fsnotify.Watcher
	ignore []string // Absolute directories whose events are dropped
}

// NewWatcher watches every directory below roots. Roots that do not exist
// are skipped. Events under ignore (the output directory) are dropped.
func NewWatcher(roots []string, ignore ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{w: fw}
	for _, ig := range ignore {
		if ig != "" {
			w.ignore = append(w.ignore, filepath.Clean(ig))
		}
	}
	for _, root := range roots {
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			continue
		}
		w.addRecursive(root)
	}
	return w, nil
}

// Run calls onChange for every relevant event until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			onChange(ev.Name)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error { return w.w.Close() }

func (w *Watcher) relevant(p string) bool {
	if shouldIgnoreEvent(p) {
		return false
	}
	clean := filepath.Clean(p)
	for _, ig := range w.ignore {
		if clean == ig || strings.HasPrefix(clean, ig+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if !w.relevant(p) {
			return filepath.SkipDir
		}
		if err := w.w.Add(p); err != nil {
			slog.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent reports paths that never trigger rebuilds: hidden
// files, editor swap and backup files, and OS metadata files.
func shouldIgnoreEvent(p string) bool {
	base := filepath.Base(p)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
