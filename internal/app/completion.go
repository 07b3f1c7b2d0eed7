package app

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/owt-cli/owt/internal/cache"
	"github.com/owt-cli/owt/internal/worker"
)

// pollCompletion is the tick-driven completion poll: a non-blocking
// receive on the active operation's channel. Empty means the op is still
// running and the spinner keeps going; a delivered value or a closed
// channel is handed to handleOpResult.
func (m *Model) pollCompletion() tea.Cmd {
	if m.resultCh == nil {
		return nil
	}
	select {
	case res, ok := <-m.resultCh:
		token := m.activeToken
		if ok {
			token = res.Token
		}
		return m.handleOpResult(opResultMsg{token: token, res: res, ok: ok})
	default:
		return nil
	}
}

// handleOpResult consumes a completed operation's result: apply the
// per-kind side effect, surface the message, clear the active-op slot.
func (m *Model) handleOpResult(msg opResultMsg) tea.Cmd {
	if msg.token != m.activeToken {
		// A result from a superseded token must not clobber the current
		// op's state.
		return nil
	}
	m.activeOp = nil
	m.activeToken = ""
	m.resultCh = nil

	if !msg.ok {
		m.logger.Printf("op %s: worker died without a result", msg.token)
		m.setMessage(sevError, "Operation failed unexpectedly")
		return m.refreshCmd()
	}

	res := msg.res
	m.logger.Printf("op %s %s on %s: success=%t", res.Kind, msg.token, res.WorktreePath, res.Success)
	m.writeResultMessage(res)

	switch res.Kind {
	case worker.Delete:
		if res.Success {
			m.store.RemoveByPath(res.WorktreePath)
			m.clampSelection()
			return nil
		}
		return m.refreshCmd()
	case worker.Add:
		if res.Success {
			return tea.Batch(m.refreshCmdSelecting(res.WorktreePath), m.maybeRunPostAddCmd(res.WorktreePath, res.DisplayName))
		}
		return m.refreshCmd()
	default: // Fetch, Pull, Push, Merge: full refresh either way
		return m.refreshCmd()
	}
}

func (m *Model) writeResultMessage(res worker.Result) {
	sev := sevInfo
	if !res.Success {
		sev = sevError
	}
	text := res.Message
	if m.verbose && res.CmdDetail != "" {
		text = fmt.Sprintf("%s\n%s", text, res.CmdDetail)
	}
	m.setMessage(sev, text)
}

// refreshCmdSelecting is refreshCmd but tags the resulting message so
// Update can move the selection to the newly added worktree once the
// refreshed store lands.
func (m *Model) refreshCmdSelecting(path string) tea.Cmd {
	inner := m.refreshCmd()
	return func() tea.Msg {
		msg := inner()
		if r, ok := msg.(refreshedMsg); ok {
			r.selectPath = path
			return r
		}
		return msg
	}
}

// handleRefreshed applies a refreshedMsg to the store, preserving
// selection by path where possible and clamping otherwise.
func (m *Model) handleRefreshed(msg refreshedMsg) {
	if msg.err != nil {
		m.logger.Printf("refresh failed: %s", msg.err)
		m.setMessage(sevError, fmt.Sprintf("refresh failed: %s", msg.err))
		return
	}

	prevPath := ""
	if w := m.selected(); w != nil {
		prevPath = w.Path
	}
	if prevPath == "" {
		// First refresh of the session: restore the selection persisted on
		// the previous exit.
		prevPath = m.restorePath
	}
	if msg.selectPath != "" {
		prevPath = msg.selectPath
	}
	m.restorePath = ""

	m.store.Replace(msg.items, msg.currentPath)
	if prevPath != "" {
		if idx := m.store.IndexOfPath(prevPath); idx >= 0 {
			m.selectedIndex = idx
			m.clampSelection()
			m.persistCache()
			return
		}
	}
	m.clampSelection()
	m.persistCache()
}

func (m *Model) persistCache() {
	all := m.store.All()
	entries := make([]cache.Entry, 0, len(all))
	for _, w := range all {
		entries = append(entries, cache.Entry{Path: w.Path, Branch: w.Branch, LastCommit: w.LastCommit})
	}
	_ = cache.WriteWorktrees(m.bareDir, entries)
	if w := m.selected(); w != nil {
		_ = cache.WriteLastSelected(m.bareDir, w.Path)
	}
}

// maybeRunPostAddCmd triggers `.owt/post-add.sh`, if present and
// executable, on its own channel separate from the active-op slot, so the
// user can start another operation while the script runs.
func (m *Model) maybeRunPostAddCmd(worktreePath, displayName string) tea.Cmd {
	script := filepath.Join(filepath.Dir(m.bareDir), ".owt", "post-add.sh")
	info, err := os.Stat(script)
	if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
		return nil
	}
	m.postAddRunning = true
	ch := make(chan postAddScriptMsg, 1)
	m.postAddCh = ch
	go func() {
		cmd := exec.CommandContext(m.ctx, script)
		cmd.Dir = worktreePath
		out, runErr := cmd.CombinedOutput()
		ch <- postAddScriptMsg{displayName: displayName, output: string(out), err: runErr}
	}()
	return waitForPostAddCmd(ch)
}

func waitForPostAddCmd(ch <-chan postAddScriptMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// handlePostAddScript surfaces the post-add script's outcome in the
// footer, independent of whatever operation is active by the time it
// finishes.
func (m *Model) handlePostAddScript(msg postAddScriptMsg) {
	m.postAddRunning = false
	m.postAddCh = nil
	if msg.err != nil {
		m.setMessage(sevError, fmt.Sprintf("post-add script for %s failed: %s", msg.displayName, msg.err))
		return
	}
	m.setMessage(sevInfo, fmt.Sprintf("post-add script for %s: %s", msg.displayName, firstLine(msg.output)))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
