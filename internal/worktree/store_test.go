package worktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplacePreservesSingleCurrent(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/main", Branch: "main"},
		{Path: "/r/feat", Branch: "feat"},
	}, "/r/feat")

	var currentCount int
	for _, w := range s.All() {
		if w.IsCurrent {
			currentCount++
			assert.Equal(t, "/r/feat", w.Path)
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestStoreReplaceNoCurrentWhenPathAbsent(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{{Path: "/r/main"}}, "/not/found")
	for _, w := range s.All() {
		assert.False(t, w.IsCurrent)
	}
}

func TestSortNameCaseSensitiveAscending(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/b", Branch: "bravo"},
		{Path: "/r/a", Branch: "Alpha"},
		{Path: "/r/c", Branch: "charlie"},
	}, "")
	s.SetSort(SortName)
	vis := s.Visible()
	require.Len(t, vis, 3)
	// Case-sensitive ascending: uppercase 'A' < lowercase letters in ASCII.
	assert.Equal(t, "Alpha", vis[0].Branch)
	assert.Equal(t, "bravo", vis[1].Branch)
	assert.Equal(t, "charlie", vis[2].Branch)
}

func TestSortRecentMissingTimestampSortsLast(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/none", Branch: "none"},
		{Path: "/r/old", Branch: "old", LastCommit: now.Add(-time.Hour), HasLastCommit: true},
		{Path: "/r/new", Branch: "new", LastCommit: now, HasLastCommit: true},
	}, "")
	s.SetSort(SortRecent)
	vis := s.Visible()
	require.Len(t, vis, 3)
	assert.Equal(t, "new", vis[0].Branch)
	assert.Equal(t, "old", vis[1].Branch)
	assert.Equal(t, "none", vis[2].Branch)
}

func TestSortRecentTiesBreakByName(t *testing.T) {
	ts := time.Now()
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/b", Branch: "bravo", LastCommit: ts, HasLastCommit: true},
		{Path: "/r/a", Branch: "alpha", LastCommit: ts, HasLastCommit: true},
	}, "")
	s.SetSort(SortRecent)
	vis := s.Visible()
	assert.Equal(t, "alpha", vis[0].Branch)
	assert.Equal(t, "bravo", vis[1].Branch)
}

func TestSortStatusOrdering(t *testing.T) {
	s := NewStore()
	clean := &Worktree{Path: "/r/clean", Branch: "clean"}
	clean.DeriveStatus()
	staged := &Worktree{Path: "/r/staged", Branch: "staged", Staged: 1}
	staged.DeriveStatus()
	unstaged := &Worktree{Path: "/r/unstaged", Branch: "unstaged", Unstaged: 1}
	unstaged.DeriveStatus()
	mixed := &Worktree{Path: "/r/mixed", Branch: "mixed", Staged: 1, Unstaged: 1}
	mixed.DeriveStatus()
	conflict := &Worktree{Path: "/r/conflict", Branch: "conflict", HasConflict: true}
	conflict.DeriveStatus()

	s.Replace([]*Worktree{clean, staged, unstaged, mixed, conflict}, "")
	s.SetSort(SortStatus)
	vis := s.Visible()
	require.Len(t, vis, 5)
	assert.Equal(t, StatusConflict, vis[0].Status)
	assert.Equal(t, StatusMixed, vis[1].Status)
	assert.Equal(t, StatusUnstaged, vis[2].Status)
	assert.Equal(t, StatusStaged, vis[3].Status)
	assert.Equal(t, StatusClean, vis[4].Status)
}

func TestRemoveByPathNoIO(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/a", Branch: "a"},
		{Path: "/r/b", Branch: "b"},
	}, "")
	s.RemoveByPath("/r/a")
	assert.Len(t, s.All(), 1)
	assert.Nil(t, s.ByPath("/r/a"))
	assert.NotNil(t, s.ByPath("/r/b"))
}

func TestAppendAddsAndRecomputes(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{{Path: "/r/a", Branch: "a"}}, "")
	s.Append(&Worktree{Path: "/r/z", Branch: "z"})
	assert.Len(t, s.Visible(), 2)
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{
		{Path: "/r/feature-auth", Branch: "feature/auth"},
		{Path: "/r/main", Branch: "main"},
	}, "")
	s.SetFilter("AUTH")
	assert.True(t, s.Matches(s.ByPath("/r/feature-auth")))
	assert.False(t, s.Matches(s.ByPath("/r/main")))
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	s := NewStore()
	s.Replace([]*Worktree{{Path: "/r/a", Branch: "a"}}, "")
	s.SetFilter("")
	assert.True(t, s.Matches(s.ByPath("/r/a")))
}

func TestRefreshIdempotent(t *testing.T) {
	s := NewStore()
	items := []*Worktree{{Path: "/r/a", Branch: "a"}, {Path: "/r/b", Branch: "b"}}
	s.Replace(items, "/r/a")
	first := append([]*Worktree{}, s.Visible()...)
	s.Replace(items, "/r/a")
	second := s.Visible()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
	}
}
