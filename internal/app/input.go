package app

import (
	"context"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/owt-cli/owt/internal/worktree"
)

// handleKey maps (view-state, key) -> intent. Navigation keys are always
// accepted from List regardless of whether a background op is running;
// operation-triggering keys are accepted here but the dispatcher's own
// guard decides whether they actually spawn anything.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.view {
	case ViewList:
		return m.handleListKey(msg)
	case ViewAddTypeSelect:
		return m.handleAddTypeKey(msg)
	case ViewAddBranchInput:
		return m.handleAddBranchInputKey(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case ViewConfigModal:
		return m.handleConfigModalKey(msg)
	case ViewHelpModal:
		m.view = ViewList
		return nil
	case ViewMergeBranchSelect:
		return m.handleMergeBranchSelectKey(msg)
	case ViewFilter:
		return m.handleFilterKey(msg)
	default:
		return nil
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	// "gg" (go to top) requires remembering a pending leading 'g'; every
	// other key clears it.
	if m.pendingG {
		m.pendingG = false
		if key == "g" {
			m.moveSelection(0, true)
			return nil
		}
	}

	switch key {
	case "ctrl+c", "q":
		m.exit = true
		return tea.Quit

	case "j", "down":
		m.moveSelection(1, false)
		return nil
	case "k", "up":
		m.moveSelection(-1, false)
		return nil
	case "g":
		m.pendingG = true
		return nil
	case "G", "end":
		m.selectedIndex = len(m.store.Visible()) - 1
		m.clampSelection()
		return nil
	case "home":
		m.selectedIndex = 0
		m.clampSelection()
		return nil
	case "ctrl+d":
		m.moveSelectionBy(pageSize(m.height))
		return nil
	case "ctrl+u":
		m.moveSelectionBy(-pageSize(m.height))
		return nil

	case "/":
		m.view = ViewFilter
		m.filterInput.SetValue(m.store.Filter())
		m.filterInput.Focus()
		return nil

	case "a":
		m.addTypeIndex = 0
		m.view = ViewAddTypeSelect
		return nil
	case "d":
		m.requestConfirmDelete()
		return nil
	case "c":
		m.openConfig()
		m.view = ViewConfigModal
		return nil
	case "?":
		m.view = ViewHelpModal
		return nil

	case "f":
		m.dispatchFetch()
		return nil
	case "p":
		m.dispatchPull()
		return nil
	case "P":
		m.dispatchPush()
		return nil
	case "r":
		return m.refreshCmd()
	case "m":
		m.dispatchMerge("@{u}")
		return nil
	case "M":
		m.openMergeBranchSelect()
		return nil

	case "s":
		m.cycleSort()
		return nil

	case "v":
		m.verbose = !m.verbose
		return nil

	case "o":
		return m.launchExternal(m.cfg.Editor)
	case "t":
		return m.launchExternal(m.cfg.Terminal)

	case keyEnter:
		return m.handleEnter()
	}
	return nil
}

// moveSelection advances the cursor by delta, or jumps to the top when
// toStart is true. No wrap-around at the list ends.
func (m *Model) moveSelection(delta int, toStart bool) {
	n := len(m.store.Visible())
	if n == 0 {
		m.selectedIndex = 0
		return
	}
	if toStart {
		m.selectedIndex = 0
		return
	}
	m.selectedIndex = clampIndex(m.selectedIndex+delta, n)
}

func (m *Model) moveSelectionBy(delta int) {
	m.moveSelection(delta, false)
}

func pageSize(height int) int {
	if height <= 4 {
		return 5
	}
	return height - 4
}

// handleEnter commits the selection: record the chosen path for the shell
// integration, set the exit flag, and quit.
func (m *Model) handleEnter() tea.Cmd {
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return nil
	}
	if !m.store.Matches(w) {
		m.setMessage(sevWarn, "Selected row does not match the current filter")
		return nil
	}
	m.exitPath = w.Path
	m.exit = true
	return tea.Quit
}

// ExitPath returns the worktree path chosen by Enter, or "" if the user quit
// without choosing one. cmd/owt reads this after the tea.Program returns and
// the terminal has been restored, then hands the path to the shell
// integration or prints it to stdout.
func (m *Model) ExitPath() string {
	return m.exitPath
}

func (m *Model) handleAddTypeKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "esc", "q", "ctrl+c":
		m.view = cancelTarget(ViewAddTypeSelect)
		return nil
	}
	for i, bt := range m.cfg.BranchTypes {
		if bt.Shortcut != "" && key == bt.Shortcut {
			m.addTypeIndex = i
			m.addInput.SetValue("")
			m.addInput.Focus()
			m.addBaseRemote = false
			m.view = ViewAddBranchInput
			return nil
		}
	}
	return nil
}

func (m *Model) handleAddBranchInputKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "esc", "ctrl+c":
		m.addInput.Blur()
		m.view = cancelTarget(ViewAddBranchInput)
		return nil
	case "tab":
		m.addBaseRemote = !m.addBaseRemote
		return nil
	case keyEnter:
		m.dispatchAdd()
		m.addInput.Blur()
		m.view = ViewList
		return nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return cmd
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", keyEnter:
		m.view = ViewList
		m.dispatchDelete()
		return nil
	case "b":
		m.confirmAlsoBranch = !m.confirmAlsoBranch
		return nil
	case "n", "esc", "q", "ctrl+c":
		m.confirmDeletePath = ""
		m.view = ViewList
		return nil
	}
	return nil
}

func (m *Model) handleConfigModalKey(msg tea.KeyMsg) tea.Cmd {
	if m.configEditing {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.configInput.Blur()
			m.configEditing = false
			return nil
		case keyEnter:
			m.commitConfigField()
			return nil
		}
		var cmd tea.Cmd
		m.configInput, cmd = m.configInput.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "esc", "q", "ctrl+c":
		m.view = ViewList
		return nil
	case "s":
		return m.saveConfigCmd()
	case "j", "down":
		m.configCursor = clampIndex(m.configCursor+1, configFieldCount)
		return nil
	case "k", "up":
		m.configCursor = clampIndex(m.configCursor-1, configFieldCount)
		return nil
	case keyEnter:
		m.editConfigField()
		return nil
	}
	return nil
}

func (m *Model) handleMergeBranchSelectKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		m.mergeIndex = clampIndex(m.mergeIndex+1, len(m.mergeBranches))
		return nil
	case "k", "up":
		m.mergeIndex = clampIndex(m.mergeIndex-1, len(m.mergeBranches))
		return nil
	case keyEnter:
		m.view = ViewList
		if m.mergeIndex < 0 || m.mergeIndex >= len(m.mergeBranches) {
			return nil
		}
		m.dispatchMerge(m.mergeBranches[m.mergeIndex])
		return nil
	case "esc", "q", "ctrl+c":
		m.view = ViewList
		return nil
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.filterInput.Blur()
		m.store.SetFilter("")
		m.view = ViewList
		return nil
	case keyEnter:
		m.filterInput.Blur()
		m.store.SetFilter(m.filterInput.Value())
		if idx := firstVisibleMatch(m.store); idx >= 0 {
			m.selectedIndex = idx
		}
		m.clampSelection()
		m.view = ViewList
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.store.SetFilter(m.filterInput.Value())
	return cmd
}

func firstVisibleMatch(s *worktree.Store) int {
	for i, w := range s.Visible() {
		if s.Matches(w) {
			return i
		}
	}
	return -1
}

// openMergeBranchSelect populates the branch list for the MergeBranchSelect
// modal. Listing is cheap enough to run synchronously on the event loop
// thread rather than through the worker/dispatcher path, since it has no
// side effect on the repository.
func (m *Model) openMergeBranchSelect() {
	if m.hasActiveOp() {
		m.setMessage(sevWarn, "Another operation is in progress")
		return
	}
	m.mergeBranches = m.git.ListLocalBranches(m.ctx, m.bareDir)
	m.mergeIndex = 0
	m.view = ViewMergeBranchSelect
}

// launchExternal fire-and-forget launches an editor/terminal command against
// the selected worktree. These are deliberately outside the single-flight op
// system: they are not git operations and report no result.
func (m *Model) launchExternal(command string) tea.Cmd {
	if command == "" {
		m.setMessage(sevWarn, "No command configured")
		return nil
	}
	w := m.selected()
	if w == nil {
		m.setMessage(sevWarn, "No worktree selected")
		return nil
	}
	dir := w.Path
	return func() tea.Msg {
		cmd := exec.CommandContext(context.Background(), command)
		cmd.Dir = dir
		_ = cmd.Start()
		return nil
	}
}

// cycleSort rotates through Name -> Recent -> Status -> Name.
func (m *Model) cycleSort() {
	switch m.store.Sort() {
	case worktree.SortName:
		m.store.SetSort(worktree.SortRecent)
	case worktree.SortRecent:
		m.store.SetSort(worktree.SortStatus)
	default:
		m.store.SetSort(worktree.SortName)
	}
	m.clampSelection()
}

const keyEnter = "enter"
