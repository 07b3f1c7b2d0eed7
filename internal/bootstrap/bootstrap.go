// Package bootstrap implements owt's one-shot subcommands: clone, init,
// setup, and test-cd. None of these touch the event loop; they either
// prepare a bare-repo layout for the TUI to open later or print static
// guidance text.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/owt-cli/owt/internal/git"
)

// Clone implements `owt clone <url>`. It clones a bare repository into
// destDir/.bare, installs the fetch refspec a bare clone omits by default
// (without it, `git fetch` inside .bare never updates
// refs/remotes/origin/*), and adds a worktree for origin's default branch
// as a sibling of .bare.
func Clone(ctx context.Context, drv *git.Driver, repoURL, destDir string) error {
	if destDir == "" {
		destDir = inferDirName(repoURL)
	}
	if destDir == "" {
		return fmt.Errorf("could not infer a directory name from %q; pass one explicitly", repoURL)
	}
	if _, err := os.Stat(destDir); err == nil {
		return fmt.Errorf("%s already exists", destDir)
	}

	bareDir := filepath.Join(destDir, ".bare")
	if res := drv.CloneBare(ctx, repoURL, bareDir); !res.Success {
		return fmt.Errorf("%s", res.Message)
	}

	if res := drv.ConfigSet(ctx, bareDir, "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	if res := drv.Fetch(ctx, bareDir); !res.Success {
		return fmt.Errorf("%s", res.Message)
	}

	branch, err := drv.RemoteDefaultBranch(ctx, bareDir)
	if err != nil {
		return fmt.Errorf("cloned %s, but could not determine a default branch to check out: %w", destDir, err)
	}

	worktreePath := filepath.Join(destDir, branch)
	if res := drv.AddWorktreeForExistingBranch(ctx, bareDir, worktreePath, branch); !res.Success {
		return fmt.Errorf("cloned %s, but failed to add the %s worktree: %s", destDir, branch, res.Message)
	}

	return nil
}

func inferDirName(repoURL string) string {
	trimmed := strings.TrimSuffix(repoURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		return filepath.Base(u.Path)
	}
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// Init implements `owt init`. Converting an existing, already-cloned
// non-bare repository into owt's bare+worktrees layout involves moving the
// reader's working tree and rewriting refs in place; doing that
// automatically risks destroying uncommitted work, so owt prints the
// manual recipe instead of attempting it.
func Init(w io.Writer, currentDir string) {
	name := filepath.Base(currentDir)
	fmt.Fprintf(w, `owt expects a bare repository with worktrees as siblings of .bare/,
not a regular working-tree clone. To convert %q in place:

  mkdir ../%s-bare && cd ../%s-bare
  git clone --bare <url-or-path-to>/%s .bare
  git -C .bare config remote.origin.fetch "+refs/heads/*:refs/remotes/origin/*"
  git -C .bare fetch
  git -C .bare worktree add ../%s-bare/main main

Then remove the old non-bare clone once you have verified the new layout,
or just use 'owt clone <url>' against a fresh checkout instead.
`, name, name, name, name, name)
}

// Setup implements `owt setup`. The printed snippet defines a shell
// function that runs owt with OWT_OUTPUT_FILE set and cds into whatever
// path owt wrote there, since owt itself can never change its parent
// shell's working directory.
func Setup(w io.Writer, shell string) {
	switch shell {
	case "fish":
		fmt.Fprint(w, fishSnippet)
	default:
		fmt.Fprint(w, posixSnippet)
	}
}

const posixSnippet = `owt() {
  local out
  out="$(mktemp)"
  OWT_OUTPUT_FILE="$out" command owt "$@"
  local rc=$?
  if [ -s "$out" ]; then
    cd "$(cat "$out")" || return
  fi
  rm -f "$out"
  return $rc
}
`

const fishSnippet = `function owt
    set -l out (mktemp)
    env OWT_OUTPUT_FILE="$out" command owt $argv
    set -l rc $status
    if test -s "$out"
        cd (cat "$out")
    end
    rm -f "$out"
    return $rc
end
`

// TestCD implements `owt test-cd`: it prints the value that would have
// been sent to the shell wrapper, so a user debugging their `setup`
// integration can confirm OWT_OUTPUT_FILE and the shell function are wired
// correctly without running the full TUI.
func TestCD(w io.Writer, path string) {
	if path == "" {
		path, _ = os.Getwd()
	}
	fmt.Fprintln(w, path)
}
