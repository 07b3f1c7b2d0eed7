package app

import (
	"time"

	"github.com/owt-cli/owt/internal/worker"
	"github.com/owt-cli/owt/internal/worktree"
)

// tickMsg drives the fixed-cadence loop iteration: each tick Update does a
// non-blocking poll of the active operation's channel. Bubbletea's own
// message queue already gives every tea.Msg — including tea.KeyMsg — a
// dedicated, immediate Update call, so tickMsg only sets the completion
// polling cadence; it never gates input responsiveness.
type tickMsg time.Time

// opResultMsg carries a completed background operation's result from the
// tick poll into handleOpResult.
type opResultMsg struct {
	token string
	res   worker.Result
	ok    bool // false means the channel closed without a value (the worker died)
}

// refreshedMsg carries a freshly-listed worktree set back from a full
// refresh.
type refreshedMsg struct {
	items       []*worktree.Worktree
	currentPath string
	err         error
	selectPath  string // if non-empty, select this path after applying (Add completion)
}

// postAddScriptMsg reports a finished `.owt/post-add.sh` run. It travels
// on its own channel, never through the active-op slot, so a new operation
// can start while an install script is still running.
type postAddScriptMsg struct {
	displayName string
	output      string
	err         error
}

// externalChangeMsg signals that the fsnotify watcher observed a change
// outside owt's control (another terminal ran `git worktree add`, etc.);
// routed through the exact same full-refresh path a successful Fetch uses,
// so there is only one reconciliation code path.
type externalChangeMsg struct{}
