// Package git wraps the git CLI and returns structured results. Every
// function here is pure from the caller's point of view (no shared state,
// no UI access) so it is safe to call from a background worker goroutine.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LookPath is exposed as a package variable so tests can stub binary
// discovery without depending on the host's PATH.
var LookPath = exec.LookPath

// Result is the structured outcome of a single git invocation: a
// human-readable message plus the exact command executed, for verbose-mode
// display.
type Result struct {
	Success bool
	Message string
	Command string
}

func join(args []string) string {
	return strings.Join(args, " ")
}

// Driver shells out to git (add_worktree's copy-file step is plain file I/O
// handled by the caller). It holds no repository state: every method takes
// the directory git runs in.
type Driver struct{}

// New constructs a Driver.
func New() *Driver { return &Driver{} }

func (d *Driver) run(ctx context.Context, dir string, args ...string) (string, error) {
	// #nosec G204 -- args are built entirely from internal call sites, never from raw user input.
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	return string(out), err
}

func (d *Driver) runCombined(ctx context.Context, dir string, args ...string) (string, error) {
	// #nosec G204 -- args are built entirely from internal call sites, never from raw user input.
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func exitDetail(err error, out string) string {
	if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	if strings.TrimSpace(out) != "" {
		return strings.TrimSpace(out)
	}
	return err.Error()
}

// WorktreeEntry is one row of `git worktree list --porcelain`.
type WorktreeEntry struct {
	Path   string
	Branch string
	Bare   bool
}

// ListWorktrees parses `git worktree list --porcelain`.
func (d *Driver) ListWorktrees(ctx context.Context, repoDir string) ([]WorktreeEntry, Result) {
	cmd := []string{"worktree", "list", "--porcelain"}
	out, err := d.run(ctx, repoDir, cmd...)
	if err != nil {
		return nil, Result{Success: false, Message: fmt.Sprintf("failed to list worktrees: %s", exitDetail(err, out)), Command: "git " + join(cmd)}
	}

	var entries []WorktreeEntry
	var cur *WorktreeEntry
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if cur != nil {
				entries = append(entries, *cur)
			}
			cur = &WorktreeEntry{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				b := strings.TrimPrefix(line, "branch ")
				cur.Branch = strings.TrimPrefix(b, "refs/heads/")
			}
		case strings.TrimSpace(line) == "bare":
			if cur != nil {
				cur.Bare = true
			}
		}
	}
	if cur != nil {
		entries = append(entries, *cur)
	}
	return entries, Result{Success: true, Message: "ok", Command: "git " + join(cmd)}
}

// StatusSummary holds the raw counters from `git status --porcelain=v2
// --branch` that internal/worktree derives a Status enum from.
type StatusSummary struct {
	Staged      int
	Unstaged    int
	Untracked   int
	HasConflict bool
}

// StatusSummaryFor runs a status probe for one worktree path.
func (d *Driver) StatusSummaryFor(ctx context.Context, path string) (StatusSummary, Result) {
	cmd := []string{"status", "--porcelain=v2", "--branch"}
	out, err := d.run(ctx, path, cmd...)
	if err != nil {
		return StatusSummary{}, Result{Success: false, Message: fmt.Sprintf("failed to read status: %s", exitDetail(err, out)), Command: "git " + join(cmd)}
	}

	var sum StatusSummary
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "u "):
			sum.HasConflict = true
		case strings.HasPrefix(line, "?"):
			sum.Untracked++
		case strings.HasPrefix(line, "1 "), strings.HasPrefix(line, "2 "):
			fields := strings.Fields(line)
			if len(fields) > 1 && len(fields[1]) >= 2 {
				xy := fields[1]
				if xy[0] != '.' {
					sum.Staged++
				}
				if xy[1] != '.' {
					sum.Unstaged++
				}
			}
		}
	}
	return sum, Result{Success: true, Message: "ok", Command: "git " + join(cmd)}
}

// AheadBehind runs `git rev-list --count` both ways against the upstream.
// hasUpstream is false (ahead=behind=0) when the branch has no tracking
// ref.
func (d *Driver) AheadBehind(ctx context.Context, path string) (ahead, behind int, hasUpstream bool, upstream string) {
	cmd := []string{"rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}"}
	out, err := d.run(ctx, path, cmd...)
	if err != nil {
		return 0, 0, false, ""
	}
	upstream = strings.TrimSpace(out)
	if upstream == "" {
		return 0, 0, false, ""
	}
	hasUpstream = true

	aheadOut, _ := d.run(ctx, path, "rev-list", "--count", "@{u}..HEAD")
	behindOut, _ := d.run(ctx, path, "rev-list", "--count", "HEAD..@{u}")
	ahead, _ = strconv.Atoi(strings.TrimSpace(aheadOut))
	behind, _ = strconv.Atoi(strings.TrimSpace(behindOut))
	return ahead, behind, hasUpstream, upstream
}

// LastCommitTime runs `git log -1 --format=%ct`.
func (d *Driver) LastCommitTime(ctx context.Context, path string) (time.Time, bool) {
	out, err := d.run(ctx, path, "log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, false
	}
	sec, convErr := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if convErr != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// Fetch runs `git fetch` for the given worktree path.
func (d *Driver) Fetch(ctx context.Context, path string) Result {
	cmd := []string{"fetch"}
	out, err := d.runCombined(ctx, path, cmd...)
	return resultFrom(err, out, cmd, "fetch")
}

// Pull runs `git pull`.
func (d *Driver) Pull(ctx context.Context, path string) Result {
	cmd := []string{"pull"}
	out, err := d.runCombined(ctx, path, cmd...)
	return resultFrom(err, out, cmd, "pull")
}

// Push runs `git push`.
func (d *Driver) Push(ctx context.Context, path string) Result {
	cmd := []string{"push"}
	out, err := d.runCombined(ctx, path, cmd...)
	return resultFrom(err, out, cmd, "push")
}

// AddWorktree runs `git worktree add`. baseIsRemote selects between a
// local branch ref and a remote-tracking ref as the base.
func (d *Driver) AddWorktree(ctx context.Context, bareRepoDir, path, branch, base string, baseIsRemote bool) Result {
	cmd := d.buildAddWorktreeCommand(path, branch, base, baseIsRemote)
	out, err := d.runCombined(ctx, bareRepoDir, cmd[1:]...)
	return resultFrom(err, out, cmd[1:], "create worktree")
}

// BuildAddWorktreeCommandDetail renders the exact `git worktree add`
// invocation for verbose-mode display without executing it.
func (d *Driver) BuildAddWorktreeCommandDetail(path, branch, base string, baseIsRemote bool) string {
	return "git " + join(d.buildAddWorktreeCommand(path, branch, base, baseIsRemote)[1:])
}

// buildAddWorktreeCommand renders the `git worktree add` argv. base is a
// bare branch/ref name (e.g. "main"); when baseIsRemote is set it is
// resolved against the origin remote (e.g. "origin/main") so the new
// branch tracks the remote-tracking ref instead of the local one.
func (d *Driver) buildAddWorktreeCommand(path, branch, base string, baseIsRemote bool) []string {
	args := []string{"git", "worktree", "add", "-b", branch, path}
	if base != "" {
		if baseIsRemote && !strings.HasPrefix(base, "origin/") {
			base = "origin/" + base
		}
		args = append(args, base)
	}
	return args
}

// RemoveWorktree runs `git worktree remove` and, if alsoDeleteBranch, `git
// branch -D`.
func (d *Driver) RemoveWorktree(ctx context.Context, bareRepoDir, path, branch string, alsoDeleteBranch bool) Result {
	cmd := []string{"worktree", "remove", "--force", path}
	out, err := d.runCombined(ctx, bareRepoDir, cmd...)
	if err != nil {
		return resultFrom(err, out, cmd, "remove worktree")
	}
	if alsoDeleteBranch && branch != "" {
		bcmd := []string{"branch", "-D", branch}
		bout, berr := d.runCombined(ctx, bareRepoDir, bcmd...)
		if berr != nil {
			return resultFrom(berr, bout, bcmd, "delete branch")
		}
	}
	return Result{Success: true, Message: "removed", Command: "git " + join(cmd)}
}

// Merge runs `git merge <source>`.
func (d *Driver) Merge(ctx context.Context, path, source string) Result {
	cmd := []string{"merge", source}
	out, err := d.runCombined(ctx, path, cmd...)
	return resultFrom(err, out, cmd, fmt.Sprintf("merge %s", source))
}

// ListLocalBranches runs `git branch --format=%(refname:short)`, used by
// the merge-branch-select modal.
func (d *Driver) ListLocalBranches(ctx context.Context, repoDir string) []string {
	out, err := d.run(ctx, repoDir, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}

// CloneBare runs `git clone --bare <url> <dest>`, used by the clone subcommand.
func (d *Driver) CloneBare(ctx context.Context, url, dest string) Result {
	cmd := []string{"clone", "--bare", url, dest}
	out, err := d.runCombined(ctx, "", cmd...)
	return resultFrom(err, out, cmd, "clone")
}

// ConfigSet runs `git config <key> <value>` in dir, used by clone to install
// the fetch refspec a bare clone omits by default.
func (d *Driver) ConfigSet(ctx context.Context, dir, key, value string) Result {
	cmd := []string{"config", key, value}
	out, err := d.runCombined(ctx, dir, cmd...)
	return resultFrom(err, out, cmd, "set config "+key)
}

// RemoteDefaultBranch resolves origin's default branch via
// `git symbolic-ref refs/remotes/origin/HEAD`, falling back to `main`/`master`
// detection if the symbolic ref was not set up by the clone.
func (d *Driver) RemoteDefaultBranch(ctx context.Context, dir string) (string, error) {
	out, err := d.run(ctx, dir, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(out)
		return strings.TrimPrefix(ref, "refs/remotes/origin/"), nil
	}
	for _, candidate := range []string{"main", "master"} {
		if _, rErr := d.run(ctx, dir, "rev-parse", "--verify", "refs/remotes/origin/"+candidate); rErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not determine remote default branch: %w", err)
}

// AddWorktreeForExistingBranch runs `git worktree add <path> <branch>`,
// tracking an already-existing branch rather than creating one (clone's
// first-worktree step).
func (d *Driver) AddWorktreeForExistingBranch(ctx context.Context, bareRepoDir, path, branch string) Result {
	cmd := []string{"worktree", "add", path, branch}
	out, err := d.runCombined(ctx, bareRepoDir, cmd...)
	return resultFrom(err, out, cmd, "create worktree")
}

// RevParseGitCommonDir runs `git rev-parse --git-common-dir` and resolves
// the answer to an absolute path.
func (d *Driver) RevParseGitCommonDir(ctx context.Context, dir string) (string, error) {
	out, err := d.run(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --git-common-dir: %w", err)
	}
	commonDir := strings.TrimSpace(out)
	if !filepath.IsAbs(commonDir) {
		abs, absErr := filepath.Abs(filepath.Join(dir, commonDir))
		if absErr == nil {
			commonDir = abs
		}
	}
	return commonDir, nil
}

// IsBareRepo runs `git rev-parse --is-bare-repository`.
func (d *Driver) IsBareRepo(ctx context.Context, dir string) bool {
	out, err := d.run(ctx, dir, "rev-parse", "--is-bare-repository")
	return err == nil && strings.TrimSpace(out) == "true"
}

func resultFrom(err error, out string, cmd []string, verb string) Result {
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to %s: %s", verb, exitDetail(err, out)), Command: "git " + join(cmd)}
	}
	return Result{Success: true, Message: strings.TrimSpace(out), Command: "git " + join(cmd)}
}
