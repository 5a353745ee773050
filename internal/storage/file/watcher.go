package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"whiteboard/document"
	"whiteboard/internal/logger"
	"whiteboard/internal/storage"
)

// Watcher reports changes to one document file made by other programs.
// Documents written through the watcher itself are not reported.
type Watcher struct {
	path string
	log  *logger.Logger

	mu      sync.Mutex
	last    []byte
	watcher *fsnotify.Watcher
}

// NewWatcher returns a watcher for the document at path.
func NewWatcher(path string, log *logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if log == nil {
		log = logger.Discard()
	}
	w := &Watcher{path: filepath.Clean(abs), log: log.WithPrefix("watch")}
	if data, err := os.ReadFile(w.path); err == nil {
		w.last = data
	}
	return w, nil
}

// Path is the watched file.
func (w *Watcher) Path() string { return w.path }

// Write saves m to the watched file without reporting it as a change.
func (w *Watcher) Write(m document.Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.last = data
	w.mu.Unlock()
	return WriteFile(w.path, m)
}

var _ storage.Store = (*Watcher)(nil)

// Save writes m to the watched file. The name is ignored.
func (w *Watcher) Save(_ context.Context, _ string, m document.Model) error {
	return w.Write(m)
}

// Load reads the watched file. The name is ignored.
func (w *Watcher) Load(_ context.Context, _ string) (document.Model, error) {
	return ReadFile(w.path)
}

// Watch starts watching and returns a channel of the models read after
// each outside change. The channel closes when ctx is done or the watcher
// is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan document.Model, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Editors replace files by renaming, so the directory is watched.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.path, err)
	}
	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	changes := make(chan document.Model)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				m := w.handleEvent(event)
				if m == nil {
					continue
				}
				select {
				case changes <- *m:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log.Warn("%v", err)
			}
		}
	}()
	return changes, nil
}

// handleEvent returns the new model when event changed the watched file
// to a readable document it has not seen.
func (w *Watcher) handleEvent(event fsnotify.Event) *document.Model {
	if filepath.Clean(event.Name) != w.path {
		return nil
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return nil
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Debug("read %s: %v", w.path, err)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if bytes.Equal(data, w.last) {
		return nil
	}
	m, err := Unmarshal(data)
	if err != nil {
		// Possibly a partial write; the next event retries.
		w.log.Debug("skip %s: %v", w.path, err)
		return nil
	}
	w.last = data
	w.log.Info("reloading %s", w.path)
	return &m
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()
	if fw == nil {
		return nil
	}
	return fw.Close()
}
