package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/owt-cli/owt/internal/worker"
	"github.com/owt-cli/owt/internal/worktree"
)

// View is a pure function of (store, view-state, active-op, spinner-phase,
// footer message). It never mutates Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "owt: waiting for terminal size…"
	}

	body := m.renderList()
	footer := m.renderFooter()

	sections := []string{m.renderHeader(), body, footer}
	base := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch m.view {
	case ViewAddTypeSelect:
		return m.overlay(base, m.renderAddTypeModal())
	case ViewAddBranchInput:
		return m.overlay(base, m.renderAddBranchModal())
	case ViewConfirmDelete:
		return m.overlay(base, m.renderConfirmDeleteModal())
	case ViewConfigModal:
		return m.overlay(base, m.renderConfigModal())
	case ViewHelpModal:
		return m.overlay(base, m.renderHelpModal())
	case ViewMergeBranchSelect:
		return m.overlay(base, m.renderMergeBranchModal())
	default:
		return base
	}
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).Render("owt")
	sub := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render(fmt.Sprintf(" — %s (sort: %s)", m.bareDir, sortName(m.store.Sort())))
	line := title + sub
	if m.view == ViewFilter {
		line += lipgloss.NewStyle().Foreground(m.theme.Cyan).Render("  filter: " + m.filterInput.View())
	} else if q := m.store.Filter(); q != "" {
		line += lipgloss.NewStyle().Foreground(m.theme.Cyan).Render(fmt.Sprintf("  (filtered: %q)", q))
	}
	return lipgloss.NewStyle().Width(m.width).Render(line)
}

func sortName(s worktree.SortMode) string {
	switch s {
	case worktree.SortRecent:
		return "recent"
	case worktree.SortStatus:
		return "status"
	default:
		return "name"
	}
}

// renderList draws one row per worktree. Selection cursor is always
// visible, even while an operation is in flight; the active operation's row
// (which may differ from the cursor's row) gets the spinner + kind label in
// the trailing column.
func (m *Model) renderList() string {
	vis := m.store.Visible()
	if len(vis) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("  no worktrees")
	}

	rows := make([]string, 0, len(vis))
	for i, w := range vis {
		rows = append(rows, m.renderRow(w, i == m.selectedIndex))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderRow(w *worktree.Worktree, selected bool) string {
	cursor := "  "
	rowStyle := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	if selected {
		cursor = lipgloss.NewStyle().Foreground(m.theme.Accent).Render("> ")
		rowStyle = rowStyle.Bold(true)
	}
	if !m.store.Matches(w) {
		rowStyle = lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	}

	name := w.DisplayName()
	if w.IsCurrent {
		name += lipgloss.NewStyle().Foreground(m.theme.Cyan).Render(" (current)")
	}
	if w.IsBare {
		name += lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render(" (bare)")
	}

	status := m.statusBadge(w)
	arrows := aheadBehindLabel(w)

	trailing := ""
	if m.activeOp != nil && m.activeOp.WorktreePath == w.Path {
		verb := m.activeOp.Kind.Verb()
		color := m.theme.WarnFg
		if m.activeOp.Kind == worker.Delete {
			color = m.theme.ErrorFg
		}
		trailing = lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf(" %s %s…", m.spinner.View(), verb))
	}

	line := fmt.Sprintf("%s%-28s %-10s %-8s%s", cursor, name, status, arrows, trailing)
	return rowStyle.Render(line)
}

func (m *Model) statusBadge(w *worktree.Worktree) string {
	var color lipgloss.Color
	switch w.Status {
	case worktree.StatusConflict:
		color = m.theme.ErrorFg
	case worktree.StatusMixed, worktree.StatusUnstaged, worktree.StatusStaged:
		color = m.theme.WarnFg
	default:
		color = m.theme.SuccessFg
	}
	return lipgloss.NewStyle().Foreground(color).Render(w.Status.String())
}

func aheadBehindLabel(w *worktree.Worktree) string {
	if !w.HasUpstream {
		return "-"
	}
	return fmt.Sprintf("↑%d ↓%d", w.Ahead, w.Behind)
}

// renderFooter shows the most recent message, or a fallback describing the
// active operation so feedback stays visible when the user scrolls away
// from the target row.
func (m *Model) renderFooter() string {
	text := m.message
	color := m.theme.TextFg
	switch m.messageSev {
	case sevWarn:
		color = m.theme.WarnFg
	case sevError:
		color = m.theme.ErrorFg
	}
	if text == "" && m.activeOp != nil {
		text = fmt.Sprintf("⦇ %s %s…", m.activeOp.Kind.Verb(), m.activeOp.DisplayName)
		color = m.theme.WarnFg
	}
	if text == "" {
		text = helpHint
	}
	text = wrap.String(text, max(m.width, 20))
	return lipgloss.NewStyle().Foreground(color).Width(m.width).Render(text)
}

const helpHint = "j/k move · a add · d delete · f fetch · p pull · P push · m merge · M merge-from · r refresh · / filter · c config · ? help · q quit"

// overlay draws a centered modal box on top of the base view, preserving
// the portions of base that fall outside the popup bounds so the list stays
// readable underneath.
func (m *Model) overlay(base, popup string) string {
	if base == "" || popup == "" {
		return base
	}

	baseLines := strings.Split(base, "\n")
	popupLines := strings.Split(popup, "\n")
	if len(baseLines) == 0 {
		return popup
	}

	baseWidth := lipgloss.Width(baseLines[0])
	popupWidth := lipgloss.Width(popupLines[0])
	leftPad := max((baseWidth-popupWidth)/2, 0)
	marginTop := max((len(baseLines)-len(popupLines))/2, 0)

	for i, line := range popupLines {
		row := marginTop + i
		if row >= len(baseLines) {
			break
		}
		pad := strings.Repeat(" ", leftPad)
		newLine := pad + line
		if w := lipgloss.Width(newLine); w < baseWidth {
			newLine += strings.Repeat(" ", baseWidth-w)
		}
		baseLines[row] = newLine
	}
	return strings.Join(baseLines, "\n")
}

func (m *Model) modalBoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderDim).
		Padding(1, 2)
}

func modalTitle(m *Model, text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).Render(text) + "\n\n"
}

// renderAddTypeModal shows the branch-type shortcut table.
func (m *Model) renderAddTypeModal() string {
	var b strings.Builder
	b.WriteString(modalTitle(m, "Add worktree — choose a branch type"))
	for _, bt := range m.cfg.BranchTypes {
		b.WriteString(fmt.Sprintf("  [%s] %-12s %s*  (base %s)\n", bt.Shortcut, bt.Name, bt.Prefix, bt.Base))
	}
	b.WriteString("\n esc cancel")
	return m.modalBoxStyle().Render(b.String())
}

// renderAddBranchModal shows the branch-name input.
func (m *Model) renderAddBranchModal() string {
	bt := m.cfg.BranchTypes[m.addTypeIndex]
	base := "local"
	if m.addBaseRemote {
		base = "remote"
	}
	var b strings.Builder
	b.WriteString(modalTitle(m, fmt.Sprintf("New %s branch (base: %s, tab to toggle)", bt.Name, base)))
	b.WriteString(fmt.Sprintf("  %s%s\n", bt.Prefix, m.addInput.View()))
	b.WriteString("\n enter create · esc back")
	return m.modalBoxStyle().Render(b.String())
}

// renderConfirmDeleteModal shows the delete confirmation dialog.
func (m *Model) renderConfirmDeleteModal() string {
	w := m.store.ByPath(m.confirmDeletePath)
	name := m.confirmDeletePath
	if w != nil {
		name = w.DisplayName()
	}
	branchNote := "off"
	if m.confirmAlsoBranch {
		branchNote = "on"
	}
	var b strings.Builder
	b.WriteString(modalTitle(m, fmt.Sprintf("Delete worktree %q?", name)))
	b.WriteString(fmt.Sprintf("  also delete branch: %s (b to toggle)\n", branchNote))
	b.WriteString("\n y/enter confirm · n/esc cancel")
	return m.modalBoxStyle().Render(b.String())
}

// renderConfigModal shows the configuration editor.
func (m *Model) renderConfigModal() string {
	var b strings.Builder
	b.WriteString(modalTitle(m, "Configuration"))

	rows := []struct {
		label string
		value string
	}{
		{"editor", m.cfg.Editor},
		{"terminal", m.cfg.Terminal},
	}
	for i, r := range rows {
		cursor := "  "
		if i == m.configCursor {
			cursor = "> "
		}
		value := r.value
		if m.configEditing && i == m.configCursor {
			value = m.configInput.View()
		}
		b.WriteString(fmt.Sprintf("%s%-10s %s\n", cursor, r.label, value))
	}
	b.WriteString(fmt.Sprintf("\n  copy_files:   %s\n", strings.Join(m.cfg.CopyFiles, ", ")))
	b.WriteString(fmt.Sprintf("  branch_types: %d configured\n", len(m.cfg.BranchTypes)))
	if m.configEditing {
		b.WriteString("\n enter commit · esc cancel edit")
	} else {
		b.WriteString("\n enter edit · s save · esc/q close")
	}
	return m.modalBoxStyle().Render(b.String())
}

// renderHelpModal shows the key reference.
func (m *Model) renderHelpModal() string {
	var b strings.Builder
	b.WriteString(modalTitle(m, "owt — keys"))
	b.WriteString(helpHint + "\n\n")
	b.WriteString("  gg/G top/bottom · Home/End · Ctrl-D/Ctrl-U page · v verbose · o editor · t terminal\n")
	b.WriteString("\n any key to close")
	return m.modalBoxStyle().Render(b.String())
}

// renderMergeBranchModal shows the merge-source branch picker.
func (m *Model) renderMergeBranchModal() string {
	var b strings.Builder
	b.WriteString(modalTitle(m, "Merge from branch"))
	if len(m.mergeBranches) == 0 {
		b.WriteString("  (no local branches found)\n")
	}
	for i, branch := range m.mergeBranches {
		cursor := "  "
		if i == m.mergeIndex {
			cursor = lipgloss.NewStyle().Foreground(m.theme.Accent).Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, branch))
	}
	b.WriteString("\n enter merge · esc cancel")
	return m.modalBoxStyle().Render(b.String())
}
