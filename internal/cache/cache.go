// Package cache persists a small snapshot of the worktree list and the last
// selected path next to the bare repository, so the dashboard can paint
// instantly on startup before the first real refresh lands.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFilename        = ".worktree-cache.json"
	lastSelectedFilename = ".last-selected"
	dirPerm              = 0o750
	filePerm             = 0o600
)

// Entry is the cached subset of worktree.Worktree fields needed to paint a
// placeholder row before a real refresh completes.
type Entry struct {
	Path       string    `json:"path"`
	Branch     string    `json:"branch"`
	LastCommit time.Time `json:"last_commit,omitempty"`
}

func dotOwtDir(bareRepoDir string) string {
	return filepath.Join(filepath.Dir(bareRepoDir), ".owt")
}

// WriteWorktrees writes the current worktree list to the cache file. Best
// effort: errors are returned but the caller may safely ignore them, since
// the cache is a pure perceived-latency optimization, never a source of
// truth (the refresh sweep owns truth).
func WriteWorktrees(bareRepoDir string, entries []Entry) error {
	dir := dotOwtDir(bareRepoDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFilename), data, filePerm)
}

// ReadWorktrees reads the cached worktree list, returning (nil, nil) when no
// cache file exists yet.
func ReadWorktrees(bareRepoDir string) ([]Entry, error) {
	data, err := os.ReadFile(filepath.Join(dotOwtDir(bareRepoDir), cacheFilename))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// WriteLastSelected persists the last-selected worktree path across
// process restarts (seeds refresh()'s "preserve selection by path" step).
func WriteLastSelected(bareRepoDir, path string) error {
	dir := dotOwtDir(bareRepoDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, lastSelectedFilename), []byte(path), filePerm)
}

// ReadLastSelected returns the last-selected path, or "" if none is cached.
func ReadLastSelected(bareRepoDir string) string {
	data, err := os.ReadFile(filepath.Join(dotOwtDir(bareRepoDir), lastSelectedFilename))
	if err != nil {
		return ""
	}
	return string(data)
}
