package app

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"

	"github.com/owt-cli/owt/internal/config"
)

// configFieldCount is the number of editable rows ConfigModal exposes.
// owt keeps this to the two free-text fields that make sense to edit
// interactively; copy_files and branch_types are file-only settings, shown
// read-only in the modal.
const configFieldCount = 2

const (
	configFieldEditor = iota
	configFieldTerminal
)

// openConfig resets the modal's cursor/editing state on entry.
func (m *Model) openConfig() {
	m.configCursor = 0
	m.configEditing = false
}

// editConfigField starts editing the field under the cursor by seeding a
// textinput with its current value.
func (m *Model) editConfigField() {
	var current string
	switch m.configCursor {
	case configFieldEditor:
		current = m.cfg.Editor
	case configFieldTerminal:
		current = m.cfg.Terminal
	default:
		return
	}
	m.configInput.SetValue(current)
	m.configInput.CursorEnd()
	m.configInput.Focus()
	m.configEditing = true
}

// commitConfigField writes the textinput's value back into cfg and leaves
// edit mode.
func (m *Model) commitConfigField() {
	value := m.configInput.Value()
	switch m.configCursor {
	case configFieldEditor:
		m.cfg.Editor = value
	case configFieldTerminal:
		m.cfg.Terminal = value
	}
	m.configInput.Blur()
	m.configEditing = false
}

// saveConfigCmd persists the in-memory config to the project config file.
// The write happens in a Cmd goroutine but the cfg snapshot is taken here,
// on the loop goroutine, so no concurrent mutation is possible.
func (m *Model) saveConfigCmd() tea.Cmd {
	path := filepath.Join(filepath.Dir(m.bareDir), ".owt", "config.toml")
	snap := *m.cfg
	snap.CopyFiles = append([]string(nil), m.cfg.CopyFiles...)
	snap.BranchTypes = append([]config.BranchType(nil), m.cfg.BranchTypes...)
	return func() tea.Msg {
		if err := writeConfigFile(path, &snap); err != nil {
			return configSavedMsg{err: err}
		}
		return configSavedMsg{path: path}
	}
}

func writeConfigFile(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := toml.Marshal(tomlConfig{
		Editor:      cfg.Editor,
		Terminal:    cfg.Terminal,
		CopyFiles:   cfg.CopyFiles,
		BranchTypes: cfg.BranchTypes,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// tomlConfig mirrors config.Config's field names with lower_snake TOML
// keys.
type tomlConfig struct {
	Editor      string              `toml:"editor,omitempty"`
	Terminal    string              `toml:"terminal,omitempty"`
	CopyFiles   []string            `toml:"copy_files,omitempty"`
	BranchTypes []config.BranchType `toml:"branch_types,omitempty"`
}

// configSavedMsg reports the outcome of saveConfigCmd.
type configSavedMsg struct {
	path string
	err  error
}
