// Package worktree defines the in-memory worktree model and the ordered
// store that backs the dashboard.
package worktree

import (
	"path/filepath"
	"time"
)

// Status is the derived health summary of a worktree's working copy.
type Status int

// Status values, declared best-to-worst; statusRank gives the Status sort
// order.
const (
	StatusClean Status = iota
	StatusStaged
	StatusUnstaged
	StatusMixed
	StatusConflict
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusStaged:
		return "staged"
	case StatusUnstaged:
		return "unstaged"
	case StatusMixed:
		return "mixed"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// statusRank orders statuses for the Status sort mode: conflict > mixed >
// unstaged > staged > clean.
func statusRank(s Status) int {
	switch s {
	case StatusConflict:
		return 0
	case StatusMixed:
		return 1
	case StatusUnstaged:
		return 2
	case StatusStaged:
		return 3
	default:
		return 4
	}
}

// Worktree is one checkout, keyed by its absolute path.
type Worktree struct {
	Path           string
	Branch         string
	IsBare         bool
	IsCurrent      bool
	Status         Status
	Ahead          int
	Behind         int
	LastCommit     time.Time
	HasLastCommit  bool
	Staged         int
	Unstaged       int
	Untracked      int
	HasConflict    bool
	HasUpstream    bool
	UpstreamBranch string
}

// DisplayName is the worktree's short label in the dashboard — its branch
// name, falling back to the base of its path for detached checkouts.
func (w *Worktree) DisplayName() string {
	if w.Branch != "" {
		return w.Branch
	}
	return filepath.Base(w.Path)
}

// DeriveStatus sets Status from the raw counters populated by the git
// driver's status probe, distinguishing a conflict from a plain mixed
// staged+unstaged state.
func (w *Worktree) DeriveStatus() {
	switch {
	case w.HasConflict:
		w.Status = StatusConflict
	case w.Staged > 0 && (w.Unstaged > 0 || w.Untracked > 0):
		w.Status = StatusMixed
	case w.Staged > 0:
		w.Status = StatusStaged
	case w.Unstaged > 0 || w.Untracked > 0:
		w.Status = StatusUnstaged
	default:
		w.Status = StatusClean
	}
}

// Dirty reports whether the worktree has any uncommitted changes.
func (w *Worktree) Dirty() bool {
	return w.Status != StatusClean
}
