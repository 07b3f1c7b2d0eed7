// Package app implements the responsive operation engine: the event loop,
// view-state machine, and background-operation dispatcher that together
// drive owt's dashboard. It is built on Bubble Tea. Operations run through
// internal/worker, whose goroutine delivers one result on a one-shot
// channel; the fixed-cadence tick polls that channel without blocking.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/owt-cli/owt/internal/cache"
	"github.com/owt-cli/owt/internal/config"
	"github.com/owt-cli/owt/internal/git"
	"github.com/owt-cli/owt/internal/theme"
	"github.com/owt-cli/owt/internal/worker"
	"github.com/owt-cli/owt/internal/worktree"
)

const tickInterval = 100 * time.Millisecond

// severity tags a footer message.
type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevError
)

// Model is the event loop's private state: the worktree store, view-state,
// active-op slot, and footer message all belong exclusively to the
// foreground goroutine.
type Model struct {
	ctx context.Context

	git        *git.Driver
	store      *worktree.Store
	cfg        *config.Config
	theme      *theme.Theme
	logger     *log.Logger
	bareDir    string
	currentDir string
	verbose    bool

	// restorePath seeds the selection on the first refresh of a session,
	// from the last-selected path persisted on the previous exit.
	restorePath string

	width, height int
	selectedIndex int

	view ViewState

	spinner spinner.Model

	message    string
	messageSev severity

	activeOp    *worker.ActiveOp
	activeToken string
	resultCh    <-chan worker.Result

	postAddRunning bool
	postAddCh      <-chan postAddScriptMsg

	filterInput textinput.Model

	addTypeIndex  int
	addInput      textinput.Model
	addBaseRemote bool

	confirmDeletePath string
	confirmAlsoBranch bool

	mergeBranches []string
	mergeIndex    int

	pendingG bool

	configCursor  int
	configEditing bool
	configInput   textinput.Model

	watchEvents <-chan struct{}

	exit     bool
	exitPath string
}

// NewModel builds the initial Model for a detected repository at bareDir.
// currentDir is the worktree the process was launched from, if any.
func NewModel(ctx context.Context, drv *git.Driver, cfg *config.Config, bareDir, currentDir string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	fi := textinput.New()
	fi.Placeholder = "filter"
	fi.CharLimit = 128

	ai := textinput.New()
	ai.Placeholder = "branch name"
	ai.CharLimit = 128

	ci := textinput.New()
	ci.CharLimit = 256

	return &Model{
		ctx:         ctx,
		git:         drv,
		store:       worktree.NewStore(),
		cfg:         cfg,
		theme:       theme.Get("dracula"),
		logger:      newDebugLogger(),
		bareDir:     bareDir,
		currentDir:  currentDir,
		restorePath: cache.ReadLastSelected(bareDir),
		view:        ViewList,
		spinner:     sp,
		filterInput: fi,
		addInput:    ai,
		configInput: ci,
	}
}

// newDebugLogger writes to the file named by OWT_DEBUG_LOG, or discards
// everything when the variable is unset. The TUI owns the terminal, so
// debug output can never go to stderr while the program runs.
func newDebugLogger() *log.Logger {
	path := os.Getenv("OWT_DEBUG_LOG")
	if path == "" {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "owt ", log.LstdFlags)
}

// Init satisfies tea.Model: kicks off the startup cache load, the first
// full refresh, the spinner animation, and the fixed-cadence tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCacheCmd(),
		m.refreshCmd(),
		m.spinner.Tick,
		tickCmd(),
		m.watchStartCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update is the event loop's single state-mutation point. Bubble Tea
// already serializes every tea.Msg onto one goroutine, so tea.KeyMsg is
// delivered and routed immediately — input polling is handled by
// bubbletea's own terminal reader, never by this function blocking.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.exit {
			return m, tea.Quit
		}
		return m, cmd

	case tickMsg:
		if cmd := m.pollCompletion(); cmd != nil {
			return m, tea.Batch(tickCmd(), cmd)
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.handleRefreshed(msg)
		return m, nil

	case postAddScriptMsg:
		m.handlePostAddScript(msg)
		return m, nil

	case externalChangeMsg:
		return m, tea.Batch(m.refreshCmd(), waitForWatchCmd(m.watchEvents))

	case configSavedMsg:
		if msg.err != nil {
			m.setMessage(sevError, fmt.Sprintf("failed to save config: %s", msg.err))
		} else {
			m.setMessage(sevInfo, fmt.Sprintf("saved config to %s", msg.path))
		}
		return m, nil
	}
	return m, nil
}

// setMessage replaces the footer message. Messages are transient: the next
// write wins, nothing is persisted.
func (m *Model) setMessage(sev severity, text string) {
	m.messageSev = sev
	m.message = text
}

func (m *Model) hasActiveOp() bool {
	return m.activeOp != nil
}

// selected returns the currently selected worktree, or nil if the visible
// list is empty.
func (m *Model) selected() *worktree.Worktree {
	vis := m.store.Visible()
	if len(vis) == 0 {
		return nil
	}
	return vis[clampIndex(m.selectedIndex, len(vis))]
}

func clampIndex(idx, n int) int {
	if n == 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// clampSelection keeps the cursor in bounds after the visible set changes
// shape (filter, sort, refresh, delete).
func (m *Model) clampSelection() {
	m.selectedIndex = clampIndex(m.selectedIndex, len(m.store.Visible()))
}
