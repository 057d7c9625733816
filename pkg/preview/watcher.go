package preview

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alantheprice/pagewright/pkg/utils"
)

// WatchFile watches one template file on disk and calls onChange with its
// path after each save, debounced over the quiet period so editors that
// write in bursts trigger a single reload. The returned stop function ends
// the watch.
func WatchFile(path string, quiet time.Duration, onChange func(string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: many editors replace the file on
	// save, which would drop a direct watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		target = path
	}

	done := make(chan struct{})
	go func() {
		logger := utils.GetLogger(true)
		var timer *time.Timer

		for {
			select {
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || abs != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(quiet, func() { onChange(path) })

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Logf("file watcher error: %v", err)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
