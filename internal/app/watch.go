package app

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 600 * time.Millisecond

// startWatch watches the bare repository's refs/logs/worktrees trees for
// changes made by another process (another terminal running `git worktree
// add`, a manual `git fetch`, etc.) and emits a single debounced signal per
// burst of events.
func startWatch(bareDir string) (<-chan struct{}, error) {
	if bareDir == "" {
		return nil, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	roots := []string{
		bareDir,
		filepath.Join(bareDir, "refs"),
		filepath.Join(bareDir, "logs"),
		filepath.Join(bareDir, "worktrees"),
	}
	for _, root := range roots {
		_ = watcher.Add(root)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(out)
		var last time.Time
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				now := time.Now()
				if !last.IsZero() && now.Sub(last) < watchDebounce {
					continue
				}
				last = now
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
