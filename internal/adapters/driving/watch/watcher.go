// Package watch reloads the serving model when another process publishes a
// new manifest.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/preciar/internal/logger"
)

// DefaultDebounce coalesces the burst of events produced by one publish.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is notified after the manifest changes.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ManifestWatcher watches the manifest file and triggers a forced reload.
type ManifestWatcher struct {
	path     string
	reloader Reloader
	debounce time.Duration
}

// NewManifestWatcher creates a watcher for the manifest at path.
func NewManifestWatcher(path string, reloader Reloader, debounce time.Duration) *ManifestWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ManifestWatcher{path: path, reloader: reloader, debounce: debounce}
}

// Run watches until ctx is cancelled.
// The parent directory is watched because the manifest is replaced by rename.
func (w *ManifestWatcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("watch: watching %s", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

// relevant reports whether event means a new manifest is in place.
func (w *ManifestWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}

func (w *ManifestWatcher) reload(ctx context.Context) {
	if err := w.reloader.Reload(ctx); err != nil {
		logger.Warn("watch: reloading model after manifest change: %v", err)
		return
	}
	logger.Info("watch: model reloaded after manifest change")
}
