package bootstrap

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owt-cli/owt/internal/git"
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

func TestCloneBootstrapsBareAndFirstWorktree(t *testing.T) {
	origin := t.TempDir()
	setupGitRepo(t, origin)
	commitFile(t, origin, "README.md", "hello")

	root := t.TempDir()
	dest := filepath.Join(root, "proj")

	drv := git.New()
	err := Clone(context.Background(), drv, origin, dest)
	require.NoError(t, err)

	bareDir := filepath.Join(dest, ".bare")
	assert.True(t, drv.IsBareRepo(context.Background(), bareDir))

	entries, res := drv.ListWorktrees(context.Background(), bareDir)
	require.True(t, res.Success)
	require.Len(t, entries, 2) // the bare entry itself, plus the checked-out branch
	found := false
	for _, e := range entries {
		if e.Branch == "main" && !e.Bare {
			found = true
		}
	}
	assert.True(t, found, "expected a non-bare worktree checked out on main")
}

func TestCloneRejectsExistingDestination(t *testing.T) {
	origin := t.TempDir()
	setupGitRepo(t, origin)
	commitFile(t, origin, "README.md", "hello")

	root := t.TempDir()
	dest := filepath.Join(root, "proj")
	require.NoError(t, os.MkdirAll(dest, 0o750))

	err := Clone(context.Background(), git.New(), origin, dest)
	assert.Error(t, err)
}

func TestInferDirName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/owt-cli/owt.git": "owt",
		"https://github.com/owt-cli/owt":     "owt",
		"git@github.com:owt-cli/owt.git":     "owt",
		"/srv/repos/owt.git":                 "owt",
	}
	for in, want := range cases {
		assert.Equal(t, want, inferDirName(in), "input %q", in)
	}
}

func TestInitPrintsConversionGuide(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "/home/user/myproject")
	out := buf.String()
	assert.Contains(t, out, "myproject")
	assert.Contains(t, out, "git clone --bare")
	assert.Contains(t, out, "owt clone")
}

func TestSetupPrintsShellSnippet(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "zsh")
	assert.Contains(t, buf.String(), "OWT_OUTPUT_FILE")

	buf.Reset()
	Setup(&buf, "fish")
	assert.Contains(t, buf.String(), "function owt")
}

func TestTestCDPrintsGivenPath(t *testing.T) {
	var buf bytes.Buffer
	TestCD(&buf, "/some/worktree")
	assert.Equal(t, "/some/worktree\n", buf.String())
}
