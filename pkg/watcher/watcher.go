package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/lua-restore/pkg/logging"
)

// ChangeEvent represents a batch of Lua file changes under the watched
// search roots.
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the resolver's search roots for new or modified
// Lua module files, so watch mode can re-run discovery and restoration.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	roots   []string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher over the given search roots, watching
// every directory below them.
func NewFileWatcher(roots []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		roots:   roots,
		events:  make(chan ChangeEvent, 10),
	}

	for _, root := range roots {
		if err := fw.watchRecursively(root); err != nil {
			logging.Warn("could not watch search root", "path", root, "error", err)
		}
	}

	return fw, nil
}

func (fw *FileWatcher) watchRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped, not fatal
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return fw.watcher.Add(path)
		}
		return nil
	})
}

// Start begins forwarding relevant file system events until the context
// is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.run(ctx)
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.events)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories need their own watch
			if event.Op.Has(fsnotify.Create) {
				if err := fw.watchRecursively(event.Name); err == nil {
					logging.Trace("watching new path", "path", event.Name)
				}
			}

			if !isModuleFile(event.Name) {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			logging.Debug("module file changed", "file", event.Name, "op", event.Op.String())
			fw.events <- ChangeEvent{
				Paths:     []string{event.Name},
				Timestamp: time.Now(),
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}

// Events returns the channel of raw change events; pass it through a
// Debouncer before triggering re-analysis.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Close stops the underlying fsnotify watcher.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func isModuleFile(path string) bool {
	return strings.HasSuffix(path, ".lua.unluac") || strings.HasSuffix(path, ".lua")
}
