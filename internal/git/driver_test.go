package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	run("config", "commit.gpgsign", "false")
}

func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	cmd := exec.Command("git", "add", name)
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	cmd = exec.Command("git", "commit", "-m", "add "+name)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestListWorktreesSingleMain(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	commitFile(t, dir, "README.md", "hello")

	d := New()
	entries, res := d.ListWorktrees(context.Background(), dir)
	require.True(t, res.Success)
	require.Len(t, entries, 1)
	assert.Equal(t, "main", entries[0].Branch)
	assert.False(t, entries[0].Bare)
}

func TestStatusSummaryCleanAndDirty(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	commitFile(t, dir, "README.md", "hello")

	d := New()
	sum, res := d.StatusSummaryFor(context.Background(), dir)
	require.True(t, res.Success)
	assert.Equal(t, StatusSummary{}, sum)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed"), 0o600))
	sum, res = d.StatusSummaryFor(context.Background(), dir)
	require.True(t, res.Success)
	assert.Equal(t, 1, sum.Unstaged)
	assert.Equal(t, 0, sum.Staged)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o600))
	sum, _ = d.StatusSummaryFor(context.Background(), dir)
	assert.Equal(t, 1, sum.Untracked)
}

func TestAheadBehindNoUpstream(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	commitFile(t, dir, "README.md", "hello")

	d := New()
	ahead, behind, hasUpstream, _ := d.AheadBehind(context.Background(), dir)
	assert.False(t, hasUpstream)
	assert.Equal(t, 0, ahead)
	assert.Equal(t, 0, behind)
}

func TestAddAndRemoveWorktree(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	commitFile(t, dir, "README.md", "hello")

	d := New()
	target := filepath.Join(t.TempDir(), "feature")
	res := d.AddWorktree(context.Background(), dir, target, "feature/x", "main", false)
	require.True(t, res.Success, res.Message)

	entries, _ := d.ListWorktrees(context.Background(), dir)
	require.Len(t, entries, 2)

	rmRes := d.RemoveWorktree(context.Background(), dir, target, "feature/x", true)
	require.True(t, rmRes.Success, rmRes.Message)

	entries, _ = d.ListWorktrees(context.Background(), dir)
	require.Len(t, entries, 1)

	branches := d.ListLocalBranches(context.Background(), dir)
	assert.NotContains(t, branches, "feature/x")
}

func TestAddWorktreeFromRemoteTrackingBase(t *testing.T) {
	origin := t.TempDir()
	setupGitRepo(t, origin)
	commitFile(t, origin, "README.md", "hello")

	dir := t.TempDir()
	cmd := exec.Command("git", "clone", origin, dir)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	// Diverge the origin so origin/main and the local main disagree; only
	// AddWorktree resolving "main" to "origin/main" will pick up the change.
	commitFile(t, origin, "remote-only.txt", "remote")
	cmd = exec.Command("git", "fetch")
	cmd.Dir = dir
	out, err = cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	d := New()
	target := filepath.Join(t.TempDir(), "feature")
	res := d.AddWorktree(context.Background(), dir, target, "feature/remote", "main", true)
	require.True(t, res.Success, res.Message)
	assert.FileExists(t, filepath.Join(target, "remote-only.txt"))
}

func TestIsBareRepoFalseForNormalRepo(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	d := New()
	assert.False(t, d.IsBareRepo(context.Background(), dir))
}

func TestBuildAddWorktreeCommandDetail(t *testing.T) {
	d := New()
	detail := d.BuildAddWorktreeCommandDetail("/repo/feature", "feature/x", "main", false)
	assert.Equal(t, "git worktree add -b feature/x /repo/feature main", detail)
}

func TestBuildAddWorktreeCommandDetailResolvesRemoteBase(t *testing.T) {
	d := New()
	detail := d.BuildAddWorktreeCommandDetail("/repo/feature", "feature/x", "main", true)
	assert.Equal(t, "git worktree add -b feature/x /repo/feature origin/main", detail)
}

func TestBuildAddWorktreeCommandDetailRemoteBaseAlreadyPrefixed(t *testing.T) {
	d := New()
	detail := d.BuildAddWorktreeCommandDetail("/repo/feature", "feature/x", "origin/main", true)
	assert.Equal(t, "git worktree add -b feature/x /repo/feature origin/main", detail)
}
