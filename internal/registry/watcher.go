package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bereanapp/berean/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// StartManifestWatcher triggers an update check whenever the precache
// manifest file changes on disk, so a fresh deployment is picked up ahead
// of the next poll tick. It watches the parent directory (not the file) so
// atomic replace sequences (temp+rename) are still observed. Events are
// filtered by basename and debounced to avoid double checks on
// write+chmod/rename cycles. Cancel ctx to stop the goroutine and close
// the watcher cleanly.
func (r *Registration) StartManifestWatcher(ctx context.Context) error {
	dir := filepath.Dir(r.manifestPath)
	base := filepath.Base(r.manifestPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	log := logger.WithComponent("registry")
	go func() {
		defer watcher.Close()

		// debounce coalesces bursty fsnotify events into a single check.
		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				r.checkForUpdate(ctx)
			})
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("manifest watcher error: %v", err)
			}
		}
	}()

	return nil
}
