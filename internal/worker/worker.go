// Package worker runs one background git operation to completion and
// reports a typed result on a one-shot channel.
//
// A Worker never touches the model, the terminal, or view-state: the
// dispatcher in internal/app snapshots everything the worker needs by value
// before spawning it, the same way a tea.Cmd closure captures its inputs by
// value, plus an explicit goroutine+channel one-shot contract on top.
package worker

import (
	"context"

	"github.com/google/uuid"
)

// Kind tags which git operation a worker is running.
type Kind int

const (
	Fetch Kind = iota
	Pull
	Push
	Add
	Delete
	Merge
)

func (k Kind) String() string {
	switch k {
	case Fetch:
		return "Fetch"
	case Pull:
		return "Pull"
	case Push:
		return "Push"
	case Add:
		return "Add"
	case Delete:
		return "Delete"
	case Merge:
		return "Merge"
	default:
		return "Unknown"
	}
}

// Verb is the present-participle label used in footer feedback and
// per-row spinners ("Fetching…", "Pulling…", …).
func (k Kind) Verb() string {
	switch k {
	case Fetch:
		return "Fetching"
	case Pull:
		return "Pulling"
	case Push:
		return "Pushing"
	case Add:
		return "Adding"
	case Delete:
		return "Deleting"
	case Merge:
		return "Merging"
	default:
		return "Working"
	}
}

// Result is produced by the worker and consumed by the completion handler
// in internal/app.
type Result struct {
	Token        string
	Kind         Kind
	Success      bool
	Message      string
	CmdDetail    string
	WorktreePath string
	DisplayName  string
}

// ActiveOp is the single in-flight operation token. At most one exists
// process-wide; Token disambiguates a completion message from a superseded
// operation if a Result somehow arrives after a newer op token was stored.
type ActiveOp struct {
	Token        string
	Kind         Kind
	WorktreePath string
	DisplayName  string
}

// NewToken returns a fresh operation identifier.
func NewToken() string {
	return uuid.NewString()
}

// Run executes fn on a new goroutine and sends exactly one Result on the
// returned channel. The channel is always created with capacity 1, so the
// send never blocks: if the loop has exited and nobody ever receives, the
// goroutine still completes and is garbage collected once the send lands in
// the buffer, and the orphaned result simply goes unread.
func Run(ctx context.Context, fn func(ctx context.Context) Result) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				// A panicking worker must still look like "no value arrived" to
				// the receiver rather than crashing the event loop; closing with
				// nothing buffered produces a closed-without-value read.
				close(ch)
			}
		}()
		ch <- fn(ctx)
	}()
	return ch
}
