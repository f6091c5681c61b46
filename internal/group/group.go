// Package group batches ordered command invocations into a single atomic
// undo/redo unit. A Group lists pending invocations, either as command
// strings resolved at execution time or as pre-bound command instances, and
// records the commands actually executed so undo can walk them in strict
// reverse order.
package group

import (
	"fmt"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
)

// Item is one pending invocation inside a group. Either Text is a command
// string to parse and resolve at execution time, or Cmd is a pre-bound
// command executed with Params directly.
type Item struct {
	Text   string
	Cmd    command.Command
	Params commandline.CommandLine
}

// Invocation records a command that actually executed as part of the group,
// in execution order. Undo walks invocations in reverse; redo replays them
// forward.
type Invocation struct {
	Cmd    command.Command
	Params commandline.CommandLine
}

// Group is an ordered batch of command invocations treated as one history
// entry. A Group is owned by a single manager invocation at a time and is
// not safe for concurrent use.
type Group struct {
	name  string
	items []Item

	// Failure policy. ContinueAfterError keeps executing remaining
	// commands after a member fails; AddToHistoryAfterError records a
	// partially executed group so the successful prefix can be undone.
	continueAfterError     bool
	addToHistoryAfterError bool

	invocations []Invocation
}

// New creates an empty group. By default execution continues past a failing
// member and partially executed groups are not recorded in history.
func New(name string) *Group {
	return &Group{
		name:               name,
		continueAfterError: true,
	}
}

// Name returns the group's display name.
func (g *Group) Name() string { return g.name }

// SetName changes the group's display name.
func (g *Group) SetName(name string) { g.name = name }

// AddCommandString appends a command string to execute.
func (g *Group) AddCommandString(text string) {
	g.items = append(g.items, Item{Text: text})
}

// AddCommand appends a pre-bound command to execute with the given
// parameters.
func (g *Group) AddCommand(cmd command.Command, params commandline.CommandLine) {
	g.items = append(g.items, Item{Cmd: cmd, Params: params})
}

// Len returns the number of pending invocations.
func (g *Group) Len() int { return len(g.items) }

// Item returns the pending invocation at index i.
func (g *Group) Item(i int) Item { return g.items[i] }

// RemoveAllCommands clears pending invocations and any recorded executions,
// making the group reusable.
func (g *Group) RemoveAllCommands() {
	g.items = nil
	g.invocations = nil
}

// SetContinueAfterError sets whether execution continues past a failing
// member.
func (g *Group) SetContinueAfterError(v bool) { g.continueAfterError = v }

// ContinueAfterError reports whether execution continues past a failing
// member.
func (g *Group) ContinueAfterError() bool { return g.continueAfterError }

// SetAddToHistoryAfterError sets whether a partially executed group is still
// recorded in history.
func (g *Group) SetAddToHistoryAfterError(v bool) { g.addToHistoryAfterError = v }

// AddToHistoryAfterError reports whether a partially executed group is still
// recorded in history.
func (g *Group) AddToHistoryAfterError() bool { return g.addToHistoryAfterError }

// RecordInvocation appends an executed command. Called by the manager during
// group execution.
func (g *Group) RecordInvocation(cmd command.Command, params commandline.CommandLine) {
	g.invocations = append(g.invocations, Invocation{Cmd: cmd, Params: params})
}

// Invocations returns a snapshot of the executed commands in execution
// order.
func (g *Group) Invocations() []Invocation {
	out := make([]Invocation, len(g.invocations))
	copy(out, g.invocations)
	return out
}

// ClearInvocations discards recorded executions before a fresh run.
func (g *Group) ClearInvocations() {
	g.invocations = nil
}

// HasUndoable reports whether any executed command can be undone.
func (g *Group) HasUndoable() bool {
	for _, inv := range g.invocations {
		if inv.Cmd.Undoable() {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the group carrying only the recorded
// executions. History entries hold snapshots so the original group can be
// reset and re-executed by the caller.
func (g *Group) Snapshot() *Group {
	s := New(g.name)
	s.continueAfterError = g.continueAfterError
	s.addToHistoryAfterError = g.addToHistoryAfterError
	s.invocations = make([]Invocation, len(g.invocations))
	copy(s.invocations, g.invocations)
	return s
}

// Description returns a display string for history listings.
func (g *Group) Description() string {
	if g.name != "" {
		return g.name
	}
	return fmt.Sprintf("%d commands", len(g.invocations))
}
