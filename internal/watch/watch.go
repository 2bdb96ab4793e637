// Package watch rebuilds a mesh whenever its source file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/logger"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// BuildFunc performs one rebuild.
type BuildFunc func(ctx context.Context) error

// Watcher runs a build once at start and again after every burst of changes
// to the source file.
type Watcher struct {
	source   string
	debounce time.Duration
	build    BuildFunc
	log      *zap.Logger
}

// New creates a watcher for source. A debounce <= 0 means DefaultDebounce.
func New(source string, debounce time.Duration, build BuildFunc) (*Watcher, error) {
	if build == nil {
		return nil, errors.New("watch: nil build function")
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", source, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		source:   abs,
		debounce: debounce,
		build:    build,
		log:      logger.Named("watch"),
	}, nil
}

// Run blocks until ctx is done. Build and watcher errors are logged and do
// not stop the loop; only failing to start watching is returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files instead of writing them, so watch the
	// directory and filter by name.
	if err := fsw.Add(filepath.Dir(w.source)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.source), err)
	}
	w.log.Info("watching", zap.String("source", w.source), zap.Duration("debounce", w.debounce))

	w.rebuild(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case e, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(e) {
				continue
			}
			w.log.Debug("source changed", zap.Stringer("op", e.Op))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			w.rebuild(ctx)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	if err := w.build(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("rebuild failed", zap.Error(err))
	}
}

// relevant reports whether e touches the source file in a way that can
// change its contents.
func (w *Watcher) relevant(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.source {
		return false
	}
	return e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Create) || e.Op.Has(fsnotify.Rename)
}
