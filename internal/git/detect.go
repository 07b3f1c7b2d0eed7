package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DetectRepo resolves the repository owt should manage:
//  1. a `.bare` directory in dir
//  2. `git rev-parse --git-common-dir`, if it names a bare repository
//  3. otherwise, a human-readable error naming what is missing
func (d *Driver) DetectRepo(ctx context.Context, dir string) (commonDir string, err error) {
	bareCandidate := filepath.Join(dir, ".bare")
	if info, statErr := os.Stat(bareCandidate); statErr == nil && info.IsDir() {
		return bareCandidate, nil
	}

	common, rpErr := d.RevParseGitCommonDir(ctx, dir)
	if rpErr != nil {
		return "", fmt.Errorf("not inside a git repository: %w", rpErr)
	}
	if !d.IsBareRepo(ctx, common) {
		return "", fmt.Errorf("%s is not rooted in a bare repository; owt requires a bare repo with sibling worktrees", dir)
	}
	return common, nil
}
