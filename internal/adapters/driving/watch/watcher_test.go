package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestManifestWatcher_Relevant(t *testing.T) {
	path := filepath.Join("/models", "manifest.json")
	w := NewManifestWatcher(path, &countingReloader{}, 0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: "/models/random_forest.gob.gz", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestManifestWatcher_ReloadsOnReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	reloader := &countingReloader{}
	w := NewManifestWatcher(path, reloader, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	tmp := filepath.Join(dir, ".manifest.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"models":[]}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return reloader.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestManifestWatcher_ReloadErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	reloader := &countingReloader{err: errors.New("corrupt artifact")}
	w := NewManifestWatcher(path, reloader, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o600))
	assert.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := reloader.calls.Load()
	require.NoError(t, os.WriteFile(path, []byte("2"), 0o600))
	assert.Eventually(t, func() bool { return reloader.calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
}
