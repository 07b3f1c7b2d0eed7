package app

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/owt-cli/owt/internal/config"
	"github.com/owt-cli/owt/internal/git"
)

// setupBareRepo builds a real bare repo + one worktree under t.TempDir(), the
// same layout DetectRepo expects, so the integration test drives the actual
// git driver instead of a fake.
func setupBareRepo(t *testing.T) (bareDir, worktreeDir string) {
	t.Helper()
	root := t.TempDir()
	bareDir = filepath.Join(root, ".bare")

	run := func(dir string, args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	// `git worktree add` needs a commit to branch from, so the first commit
	// is made in a scratch origin and the bare repo is cloned from it.
	origin := t.TempDir()
	run(origin, "init", "-b", "main")
	run(origin, "config", "user.email", "test@example.com")
	run(origin, "config", "user.name", "Test User")
	run(origin, "config", "commit.gpgsign", "false")
	require.NoError(t, exec.Command("sh", "-c", "echo hi > "+filepath.Join(origin, "README.md")).Run())
	run(origin, "add", "README.md")
	run(origin, "commit", "-m", "init")
	run(root, "clone", "--bare", origin, bareDir)

	worktreeDir = filepath.Join(root, "main")
	run(bareDir, "worktree", "add", worktreeDir, "main")

	return bareDir, worktreeDir
}

// TestNavigationDuringBackgroundFetch exercises the central non-blocking
// property: the cursor keeps moving while a Fetch is in flight, and the
// fetch's own completion arrives asynchronously without blocking input.
func TestNavigationDuringBackgroundFetch(t *testing.T) {
	bareDir, worktreeDir := setupBareRepo(t)

	cfg := config.Default()
	m := NewModel(context.Background(), git.New(), cfg, bareDir, worktreeDir)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	tm.Send(tea.WindowSizeMsg{Width: 100, Height: 30})
	time.Sleep(150 * time.Millisecond) // let the initial refresh land

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")}) // dispatch Fetch
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}) // navigation must not block
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})

	time.Sleep(200 * time.Millisecond) // let the fetch complete

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	require.True(t, final.exit)
	require.Nil(t, final.activeOp, "the completed fetch must have cleared the active-op slot")
}

// TestDeleteFastPathSkipsFullRefresh verifies that a successful delete
// removes the row in-memory rather than round-tripping through a full
// refresh.
func TestDeleteFastPathSkipsFullRefresh(t *testing.T) {
	bareDir, worktreeDir := setupBareRepo(t)
	drv := git.New()

	featurePath := filepath.Join(filepath.Dir(bareDir), "feature")
	res := drv.AddWorktree(context.Background(), bareDir, featurePath, "feature/x", "main", false)
	require.True(t, res.Success, res.Message)

	cfg := config.Default()
	m := NewModel(context.Background(), drv, cfg, bareDir, worktreeDir)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	tm.Send(tea.WindowSizeMsg{Width: 100, Height: 30})
	time.Sleep(150 * time.Millisecond)

	// Filter down to the feature worktree specifically rather than relying on
	// sort-order position, then select it and delete it.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("feature")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	time.Sleep(250 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	for _, w := range final.store.All() {
		require.NotEqual(t, featurePath, w.Path, "deleted worktree must be gone from the store")
	}
}
