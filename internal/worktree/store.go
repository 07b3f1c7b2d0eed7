package worktree

import (
	"sort"
	"strings"
)

// SortMode selects the ordering used by Store.Visible.
type SortMode int

const (
	SortName SortMode = iota
	SortRecent
	SortStatus
)

// Store is the ordered in-memory table of worktrees plus the active sort
// mode and filter query.
//
// Store owns no I/O: Replace is handed a freshly-listed slice by the
// caller (internal/app wires it to the git driver) and only does the
// in-memory reconciliation — IsCurrent, sorting, filtering. Selection is
// kept by the caller.
type Store struct {
	items   []*Worktree
	sort    SortMode
	filter  string
	visible []*Worktree // recomputed by recompute(); never mutated in place
}

// NewStore returns an empty store with the default sort mode.
func NewStore() *Store {
	return &Store{sort: SortName}
}

// Replace rebuilds the store's contents from a freshly-listed slice,
// recomputing IsCurrent (exactly zero or one entry may be current) and the
// visible view. It does not touch selection; callers preserve selection by
// path around this call.
func (s *Store) Replace(items []*Worktree, currentPath string) {
	s.items = items
	seenCurrent := false
	for _, w := range s.items {
		w.IsCurrent = !seenCurrent && currentPath != "" && w.Path == currentPath
		if w.IsCurrent {
			seenCurrent = true
		}
	}
	s.recompute()
}

// RemoveByPath deletes the worktree at path in-memory without I/O — used by
// the Delete completion handler to avoid a full refresh.
func (s *Store) RemoveByPath(path string) {
	for i, w := range s.items {
		if w.Path == path {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.recompute()
}

// Append inserts a newly-created worktree (used after Add completes as a
// cheap alternative to a full refresh).
func (s *Store) Append(w *Worktree) {
	s.items = append(s.items, w)
	s.recompute()
}

// SetSort changes the sort mode and recomputes the visible view.
func (s *Store) SetSort(mode SortMode) {
	s.sort = mode
	s.recompute()
}

// Sort returns the active sort mode.
func (s *Store) Sort() SortMode { return s.sort }

// SetFilter changes the filter query and recomputes the visible view.
func (s *Store) SetFilter(query string) {
	s.filter = query
	s.recompute()
}

// Filter returns the active filter query.
func (s *Store) Filter() string { return s.filter }

// All returns every worktree regardless of filter.
func (s *Store) All() []*Worktree { return s.items }

// Visible returns the filtered+sorted view used for rendering and selection
// arithmetic.
func (s *Store) Visible() []*Worktree { return s.visible }

// ByPath finds a worktree by its path, searching all items (not just
// visible ones).
func (s *Store) ByPath(path string) *Worktree {
	for _, w := range s.items {
		if w.Path == path {
			return w
		}
	}
	return nil
}

// IndexOfPath returns the index of path within Visible(), or -1.
func (s *Store) IndexOfPath(path string) int {
	for i, w := range s.visible {
		if w.Path == path {
			return i
		}
	}
	return -1
}

// Matches reports whether a worktree matches the current filter query:
// case-insensitive substring match against display name or branch; an
// empty query matches everything.
func (s *Store) Matches(w *Worktree) bool {
	if s.filter == "" {
		return true
	}
	q := strings.ToLower(s.filter)
	return strings.Contains(strings.ToLower(w.DisplayName()), q) ||
		strings.Contains(strings.ToLower(w.Branch), q)
}

func (s *Store) recompute() {
	visible := make([]*Worktree, 0, len(s.items))
	visible = append(visible, s.items...)

	switch s.sort {
	case SortName:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].DisplayName() < visible[j].DisplayName()
		})
	case SortRecent:
		sort.SliceStable(visible, func(i, j int) bool {
			a, b := visible[i], visible[j]
			if a.HasLastCommit != b.HasLastCommit {
				// entries missing a timestamp sort last
				return a.HasLastCommit
			}
			if !a.HasLastCommit {
				return a.DisplayName() < b.DisplayName()
			}
			if !a.LastCommit.Equal(b.LastCommit) {
				return a.LastCommit.After(b.LastCommit)
			}
			return a.DisplayName() < b.DisplayName()
		})
	case SortStatus:
		sort.SliceStable(visible, func(i, j int) bool {
			a, b := visible[i], visible[j]
			ra, rb := statusRank(a.Status), statusRank(b.Status)
			if ra != rb {
				return ra < rb
			}
			return a.DisplayName() < b.DisplayName()
		})
	}

	s.visible = visible
}
