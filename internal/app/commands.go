package app

import (
	"runtime"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/owt-cli/owt/internal/cache"
	"github.com/owt-cli/owt/internal/git"
	"github.com/owt-cli/owt/internal/worktree"
)

// refreshCmd rebuilds the worktree table: one listing call, then a status
// probe per worktree. The probes run concurrently, bounded by a semaphore
// sized to NumCPU.
func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		entries, listResult := m.git.ListWorktrees(m.ctx, m.bareDir)
		if !listResult.Success {
			return refreshedMsg{err: errMessage(listResult.Message)}
		}

		items := make([]*worktree.Worktree, len(entries))
		sem := make(chan struct{}, max(1, runtime.NumCPU()))
		var wg sync.WaitGroup
		for i, e := range entries {
			wg.Add(1)
			go func(i int, e git.WorktreeEntry) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				items[i] = m.probeWorktree(e.Path, e.Branch, e.Bare)
			}(i, e)
		}
		wg.Wait()

		return refreshedMsg{items: items, currentPath: m.currentDir}
	}
}

func (m *Model) probeWorktree(path, branch string, bare bool) *worktree.Worktree {
	w := &worktree.Worktree{Path: path, Branch: branch, IsBare: bare}
	if bare {
		return w
	}

	status, statusResult := m.git.StatusSummaryFor(m.ctx, path)
	if statusResult.Success {
		w.Staged, w.Unstaged, w.Untracked, w.HasConflict = status.Staged, status.Unstaged, status.Untracked, status.HasConflict
	}
	w.DeriveStatus()

	w.Ahead, w.Behind, w.HasUpstream, w.UpstreamBranch = m.git.AheadBehind(m.ctx, path)

	if t, ok := m.git.LastCommitTime(m.ctx, path); ok {
		w.LastCommit, w.HasLastCommit = t, true
	}
	return w
}

type errMessage string

func (e errMessage) Error() string { return string(e) }

// loadCacheCmd seeds the model with the last-known snapshot so the first
// frame isn't empty while the real refresh runs.
func (m *Model) loadCacheCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := cache.ReadWorktrees(m.bareDir)
		if err != nil || len(entries) == 0 {
			return nil
		}
		items := make([]*worktree.Worktree, 0, len(entries))
		for _, e := range entries {
			items = append(items, &worktree.Worktree{
				Path: e.Path, Branch: e.Branch, LastCommit: e.LastCommit, HasLastCommit: !e.LastCommit.IsZero(),
			})
		}
		return refreshedMsg{items: items, currentPath: m.currentDir}
	}
}

// watchStartCmd starts the fsnotify watcher and returns a Cmd that
// delivers the first externalChangeMsg, if any (watch.go owns the loop).
func (m *Model) watchStartCmd() tea.Cmd {
	ch, err := startWatch(m.bareDir)
	if err != nil {
		return nil
	}
	m.watchEvents = ch
	return waitForWatchCmd(ch)
}

func waitForWatchCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return externalChangeMsg{}
	}
}
