package generation

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchOverrides reloads the override file whenever it changes on disk.
// The watch runs until ctx is cancelled. A reload that fails to parse keeps
// the previously loaded templates.
func (b *Builder) WatchOverrides(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create override watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save and
	// a file-level watch is lost after the first rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go b.watchLoop(ctx, watcher, path)
	return nil
}

func (b *Builder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := b.LoadOverrides(ctx, path); err != nil {
				b.logger.Warn(ctx, "Prompt override reload failed, keeping previous templates", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn(ctx, "Prompt override watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
