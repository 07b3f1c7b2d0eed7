package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/owt-cli/owt/internal/worker"
)

// guardActiveOp enforces single-flight for every op kind: only one
// operation may be in flight at a time. Returns true (and sets the footer
// message) when dispatch must be refused.
func (m *Model) guardActiveOp() bool {
	if m.hasActiveOp() {
		m.setMessage(sevWarn, "Another operation is in progress")
		return true
	}
	return false
}

// dispatchFetch validates nothing beyond the guard (fetch has no
// precondition) and spawns a Fetch worker for the selected worktree.
func (m *Model) dispatchFetch() {
	if m.guardActiveOp() {
		return
	}
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return
	}
	path, name := w.Path, w.DisplayName()
	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Fetch, WorktreePath: path, DisplayName: name}
	m.setMessage(sevInfo, fmt.Sprintf("%s %s…", worker.Fetch.Verb(), name))
	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := m.git.Fetch(ctx, path)
		return worker.Result{Token: token, Kind: worker.Fetch, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: path, DisplayName: name}
	})
}

func (m *Model) dispatchPull() {
	if m.guardActiveOp() {
		return
	}
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return
	}
	if w.Dirty() {
		m.setMessage(sevError, "Pull requires a clean worktree")
		return
	}
	path, name := w.Path, w.DisplayName()
	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Pull, WorktreePath: path, DisplayName: name}
	m.setMessage(sevInfo, fmt.Sprintf("%s %s…", worker.Pull.Verb(), name))
	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := m.git.Pull(ctx, path)
		return worker.Result{Token: token, Kind: worker.Pull, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: path, DisplayName: name}
	})
}

func (m *Model) dispatchPush() {
	if m.guardActiveOp() {
		return
	}
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return
	}
	path, name := w.Path, w.DisplayName()
	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Push, WorktreePath: path, DisplayName: name}
	m.setMessage(sevInfo, fmt.Sprintf("%s %s…", worker.Push.Verb(), name))
	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := m.git.Push(ctx, path)
		return worker.Result{Token: token, Kind: worker.Push, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: path, DisplayName: name}
	})
}

// dispatchDelete re-validates the target after the confirm dialog: the
// worktree must still exist, must not be the current one, and must be
// clean. requestConfirmDelete below has already rejected targets that were
// busy when the dialog opened.
func (m *Model) dispatchDelete() {
	if m.guardActiveOp() {
		return
	}
	path := m.confirmDeletePath
	w := m.store.ByPath(path)
	if w == nil {
		m.setMessage(sevError, "Worktree no longer exists")
		return
	}
	if w.IsCurrent {
		m.setMessage(sevError, "Cannot delete the current worktree")
		return
	}
	if w.Dirty() {
		m.setMessage(sevError, "Delete requires a clean worktree")
		return
	}
	name := w.DisplayName()
	branch := w.Branch
	alsoBranch := m.confirmAlsoBranch
	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Delete, WorktreePath: path, DisplayName: name}
	m.setMessage(sevInfo, fmt.Sprintf("%s %s…", worker.Delete.Verb(), name))
	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := m.git.RemoveWorktree(ctx, m.bareDir, path, branch, alsoBranch)
		return worker.Result{Token: token, Kind: worker.Delete, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: path, DisplayName: name}
	})
}

// requestConfirmDelete implements the List -> ConfirmDelete transition.
// Opening ConfirmDelete for the worktree the active op is running against
// is rejected with an error message.
func (m *Model) requestConfirmDelete() {
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return
	}
	if m.activeOp != nil && m.activeOp.WorktreePath == w.Path {
		m.setMessage(sevError, "Another operation is in progress")
		return
	}
	if w.IsBare {
		m.setMessage(sevError, "Cannot delete the bare repository")
		return
	}
	if w.IsCurrent {
		m.setMessage(sevError, "Cannot delete the current worktree")
		return
	}
	m.confirmDeletePath = w.Path
	m.confirmAlsoBranch = false
	m.view = ViewConfirmDelete
}

// dispatchMerge spawns a Merge worker with `source` as the branch merged
// into the selected worktree. source is captured by value along with the
// rest of the snapshot.
func (m *Model) dispatchMerge(source string) {
	if m.guardActiveOp() {
		return
	}
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return
	}
	if w.Dirty() {
		m.setMessage(sevError, "Merge requires a clean worktree")
		return
	}
	path, name := w.Path, w.DisplayName()
	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Merge, WorktreePath: path, DisplayName: name}
	m.setMessage(sevInfo, fmt.Sprintf("%s %s…", worker.Merge.Verb(), name))
	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := m.git.Merge(ctx, path, source)
		return worker.Result{Token: token, Kind: worker.Merge, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: path, DisplayName: name}
	})
}

// dispatchAdd validates the branch-type + name inputs, resolves copy
// sources, and spawns an Add worker. The worker runs `git worktree add`
// then copies configured files; the post-add script is triggered
// separately by the completion handler.
func (m *Model) dispatchAdd() {
	if m.guardActiveOp() {
		return
	}
	if m.addTypeIndex < 0 || m.addTypeIndex >= len(m.cfg.BranchTypes) {
		m.setMessage(sevError, "No branch type selected")
		return
	}
	bt := m.cfg.BranchTypes[m.addTypeIndex]
	name := m.addInput.Value()
	if name == "" {
		m.setMessage(sevError, "Branch name cannot be empty")
		return
	}
	branch := bt.Prefix + name
	newPath := filepath.Join(filepath.Dir(m.bareDir), name)

	parentDir := filepath.Dir(newPath)
	if !dirIsWritable(parentDir) {
		m.setMessage(sevError, fmt.Sprintf("Cannot create worktree: %s is not a writable directory", parentDir))
		return
	}

	copySrc := m.currentDir
	if copySrc == "" {
		if all := m.store.All(); len(all) > 0 {
			copySrc = all[0].Path
		}
	}
	copyFiles := append([]string(nil), m.cfg.CopyFiles...)

	drv := m.git
	bareDir := m.bareDir
	base := bt.Base
	baseIsRemote := m.addBaseRemote

	token := worker.NewToken()
	m.activeToken = token
	m.activeOp = &worker.ActiveOp{Token: token, Kind: worker.Add, WorktreePath: newPath, DisplayName: branch}
	feedback := fmt.Sprintf("%s %s…", worker.Add.Verb(), branch)
	if m.verbose {
		feedback += "\n" + drv.BuildAddWorktreeCommandDetail(newPath, branch, base, baseIsRemote)
	}
	m.setMessage(sevInfo, feedback)

	m.resultCh = worker.Run(m.ctx, func(ctx context.Context) worker.Result {
		res := drv.AddWorktree(ctx, bareDir, newPath, branch, base, baseIsRemote)
		if res.Success {
			copyConfiguredFiles(copySrc, newPath, copyFiles)
		}
		return worker.Result{Token: token, Kind: worker.Add, Success: res.Success, Message: res.Message, CmdDetail: res.Command, WorktreePath: newPath, DisplayName: branch}
	})
}

// dirIsWritable checks the Add precondition synchronously, before any
// worker is spawned: dir must exist and accept a new file. Probing with a
// real temp file (rather than inspecting permission bits) gets this right
// across filesystems and ownership setups that simple mode checks miss.
func dirIsWritable(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".owt-writable-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// copyConfiguredFiles copies each configured path from src to dst inside
// the worker. Best-effort: a missing source file is skipped rather than
// failing the whole Add.
func copyConfiguredFiles(src, dst string, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(src, f))
		if err != nil {
			continue
		}
		_ = os.WriteFile(filepath.Join(dst, f), data, 0o600)
	}
}

