// Package watch re-runs a build whenever one of its input files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/util/sets"
)

// DefaultDebounce is the quiet period required after the last change before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc performs one build. Its error is logged; watching continues.
type RunFunc func(ctx context.Context) error

// Watcher monitors a fixed set of files and serializes rebuilds. A change
// seen while a rebuild is running schedules exactly one follow-up rebuild.
type Watcher struct {
	files    sets.Set[string]
	dirs     []string
	run      RunFunc
	watcher  *fsnotify.Watcher
	trigger  chan struct{}
	debounce time.Duration
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for files. Directories are watched rather than the
// files themselves so editors that replace files on save are still seen.
func New(files []string, run RunFunc, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("watch: no files to watch")
	}
	if run == nil {
		return nil, errors.New("watch: nil run function")
	}

	w := &Watcher{
		files:    sets.New[string](),
		run:      run,
		trigger:  make(chan struct{}, 1),
		debounce: DefaultDebounce,
	}
	seenDirs := sets.New[string]()
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		w.files.Insert(abs)
		if dir := filepath.Dir(abs); seenDirs.Insert(dir) {
			w.dirs = append(w.dirs, dir)
		}
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.watcher = fw
	return w, nil
}

// Run watches until ctx is canceled. It returns nil on cancellation and an
// error only when watching could not be set up.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	slog.Info("Watching for changes", slog.Int("files", len(w.files)), slog.Duration("debounce", w.debounce))

	go w.watchLoop(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			slog.Info("Stopped watching")
			return nil
		case <-w.trigger:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	slog.Info("Change detected, rebuilding")
	if err := w.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Rebuild failed; waiting for further changes", logfields.Error(err))
		return
	}
	slog.Info("Rebuild succeeded; waiting for further changes")
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files.Has(filepath.Clean(event.Name)) {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Watched file changed", logfields.File(event.Name), slog.String("op", event.Op.String()))
				w.requestRun()
			case event.Has(fsnotify.Remove):
				slog.Warn("Watched file removed", logfields.File(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// requestRun coalesces change notifications; at most one is pending.
func (w *Watcher) requestRun() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}
