// Package watch reloads the reference table when its file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/hsn/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or a spreadsheet
// export produces for a single save.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called once per debounced change.
type ReloadFunc func(ctx context.Context) error

// Watcher observes one file. It watches the parent directory so atomic
// replace-by-rename saves are seen too.
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching path's directory. Call Run to process events and Close
// to release the OS watch.
func New(path string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	if reload == nil {
		return nil, errors.New("watch: reload func is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{
		path:     absPath,
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is cancelled or the watcher is closed. Reload errors
// are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "err", err)
		case <-timer.C:
			start := time.Now()
			if err := w.reload(ctx); err != nil {
				w.logger.Error("Reload failed", "path", w.path, "err", err)
				continue
			}
			w.logger.Info("Reloaded", "path", w.path, "duration", time.Since(start))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops the underlying OS watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
