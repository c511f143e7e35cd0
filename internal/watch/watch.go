// Package watch reruns extraction when source files below a root change.
// It wraps fsnotify with recursive directory registration and debouncing.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blendin/extractor/pkg/parser"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

var (
	// ErrPathNotExist indicates the watch root does not exist.
	ErrPathNotExist = errors.New("watch path does not exist")

	// ErrPathNotDirectory indicates the watch root is not a directory.
	ErrPathNotDirectory = errors.New("watch path is not a directory")
)

// RebuildFunc is called with the slash-separated relative paths that
// changed since the previous call, sorted.
type RebuildFunc func(ctx context.Context, changed []string) error

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch recursively.
	Root string

	// Filter selects relevant directories and files.
	Filter parser.PathFilter

	// Debounce is the quiet period before a rebuild. Default is 200ms.
	Debounce time.Duration

	// Logger receives watch errors and rebuild failures.
	Logger *slog.Logger
}

// Watcher monitors a source tree.
type Watcher struct {
	config  Config
	fs      *fsnotify.Watcher
	watched map[string]bool
}

// New validates cfg and creates a Watcher. Call Close when done.
func New(cfg Config) (*Watcher, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPathNotExist
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrPathNotDirectory
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  cfg,
		fs:      fsw,
		watched: make(map[string]bool),
	}, nil
}

// Run registers the tree and blocks until ctx is done, calling rebuild once
// per burst of relevant changes. Rebuild errors are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	if err := w.addDirectoryRecursive(w.config.Root); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if rel, relevant := w.handleEvent(event); relevant {
				pending[rel] = struct{}{}
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Warn("watch error", slog.Any("error", err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			sort.Strings(changed)
			clear(pending)

			if err := rebuild(ctx, changed); err != nil {
				w.config.Logger.Error("rebuild failed", slog.Any("error", err))
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// handleEvent returns the relative path of event and whether it affects extraction.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.config.Filter.SkipDir(rel) {
				return "", false
			}
			_ = w.addDirectoryRecursive(event.Name)
			return rel, true
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.watched[event.Name] {
			delete(w.watched, event.Name)
			return rel, true
		}
	}

	if event.Op == fsnotify.Chmod || w.config.Filter.SkipDir(path.Dir(rel)) {
		return "", false
	}

	return rel, w.config.Filter.MatchFile(rel)
}

// addDirectoryRecursive adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addDirectoryRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if rel, ok := w.relative(path); ok && w.config.Filter.SkipDir(rel) {
			return filepath.SkipDir
		}

		if err := w.fs.Add(path); err != nil {
			return err
		}
		w.watched[path] = true
		return nil
	})
}
