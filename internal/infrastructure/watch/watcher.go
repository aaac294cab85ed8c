package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/beaconhq/beacon/pkg/domain/projection"
)

// Update carries the result of re-projecting a changed context file.
type Update struct {
	Projection *projection.StatusProjection
	// Err is set when the file could not be read, parsed, or projected.
	// The watcher keeps running; a partially-written file usually settles on
	// the next write.
	Err error
}

// ContextWatcher watches a task context JSON file and re-projects it on every
// settled change.
type ContextWatcher struct {
	path        string
	executionID string
	projectID   string
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	onUpdate    func(Update)
}

// NewContextWatcher creates a watcher for the given context file. Events are
// debounced before re-projection; a zero debounce defaults to 500ms.
func NewContextWatcher(path, executionID, projectID string, debounce time.Duration, onUpdate func(Update)) (*ContextWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &ContextWatcher{
		path:        path,
		executionID: executionID,
		projectID:   projectID,
		debounce:    debounce,
		watcher:     w,
		onUpdate:    onUpdate,
	}, nil
}

// Run projects the file once, then blocks re-projecting on change until the
// context is cancelled.
func (w *ContextWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Watch the parent directory: editors and runners typically replace the
	// file via rename, which drops a watch on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.project()

	debouncer := NewDebouncer(w.debounce, w.project)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			debouncer.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *ContextWatcher) project() {
	if w.onUpdate == nil {
		return
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		w.onUpdate(Update{Err: fmt.Errorf("read context file: %w", err)})
		return
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		w.onUpdate(Update{Err: fmt.Errorf("parse context file: %w", err)})
		return
	}

	p, err := projection.FromTaskContext(doc, w.executionID, w.projectID)
	if err != nil {
		w.onUpdate(Update{Err: err})
		return
	}
	w.onUpdate(Update{Projection: p})
}
