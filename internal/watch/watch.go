// Package watch reports new and changed image files under a set of directories.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tordrt/exiftable/internal/collector"
)

// DefaultDebounce is how long a file must stay quiet before it is handled
const DefaultDebounce = 500 * time.Millisecond

// Handler receives a sorted batch of image paths that settled since the last call
type Handler func(ctx context.Context, paths []string) error

// Options configures a Watcher
type Options struct {
	Extensions []string
	Debounce   time.Duration
	Logger     *zap.Logger
}

// Watcher follows directory trees with fsnotify. Subdirectories created while
// running are watched too.
type Watcher struct {
	watcher    *fsnotify.Watcher
	handler    Handler
	extensions []string
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New watches every directory under dirs
func New(dirs []string, handler Handler, opts Options) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = collector.DefaultExtensions
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:    fw,
		handler:    handler,
		extensions: opts.Extensions,
		debounce:   opts.Debounce,
		logger:     opts.Logger,
		pending:    make(map[string]time.Time),
	}

	for _, dir := range dirs {
		if err := w.addTree(dir, false); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches dir and its subdirectories. With enqueue set, images already
// inside are queued, which covers directories moved into a watched tree.
func (w *Watcher) addTree(dir string, enqueue bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Debug("watching directory", zap.String("dir", path))
			return nil
		}
		if enqueue && collector.IsImageFile(path, w.extensions) {
			w.touch(path)
		}
		return nil
	})
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// Run dispatches batches until ctx is cancelled, then closes the watcher.
// Handler errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !collector.IsImageFile(event.Name, w.extensions) {
		return
	}
	w.logger.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.touch(event.Name)
}

// flush hands settled paths to the handler
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	// Files removed before settling are dropped
	paths := ready[:0]
	for _, path := range ready {
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.logger.Info("files settled", zap.Int("count", len(paths)))
	if err := w.handler(ctx, paths); err != nil {
		w.logger.Error("handler failed", zap.Strings("paths", paths), zap.Error(err))
	}
}
