package command

import (
	"sync"

	"github.com/dshills/cmdstack/internal/commandline"
)

// Command represents a named action that can be executed and optionally
// undone.
type Command interface {
	// Name returns the command's unique name. Registration treats names
	// case-insensitively.
	Name() string

	// Undoable reports whether executions of this command can be undone
	// and should enter the history.
	Undoable() bool

	// Execute performs the command and returns its result text.
	Execute(cl commandline.CommandLine) (string, error)

	// Undo reverses a prior execution with the same parameters.
	Undo(cl commandline.CommandLine) (string, error)
}

// Cloner is implemented by commands that keep per-invocation undo state.
// The manager executes a fresh clone for each invocation and stores the
// clone in history, so repeated executions undo independently.
type Cloner interface {
	Clone() Command
}

// Callback observes the lifecycle of a single command.
type Callback interface {
	// PreExecute runs before the command executes.
	PreExecute(cl commandline.CommandLine)

	// PostExecute runs after the command executed, successfully or not.
	PostExecute(cl commandline.CommandLine, result string, err error)

	// PreUndo runs before the command is undone.
	PreUndo(cl commandline.CommandLine)

	// PostUndo runs after the command was undone, successfully or not.
	PostUndo(cl commandline.CommandLine, result string, err error)
}

// NopCallback is a Callback with empty hooks, for embedding.
type NopCallback struct{}

func (NopCallback) PreExecute(commandline.CommandLine)                 {}
func (NopCallback) PostExecute(commandline.CommandLine, string, error) {}
func (NopCallback) PreUndo(commandline.CommandLine)                    {}
func (NopCallback) PostUndo(commandline.CommandLine, string, error)    {}

// CallbackHolder manages a command's per-command callback list.
// Base provides an implementation for embedding.
type CallbackHolder interface {
	RegisterCallback(cb Callback)
	RemoveCallback(cb Callback) bool
	Callbacks() []Callback
}

// Base carries the per-command callback list. Embed it in command
// implementations; it is the only state shared by the command contract.
type Base struct {
	mu        sync.Mutex
	callbacks []Callback
}

// RegisterCallback appends a callback. Insertion order is notification
// order.
func (b *Base) RegisterCallback(cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, cb)
}

// RemoveCallback removes a previously registered callback.
// Returns false if the callback was not registered.
func (b *Base) RemoveCallback(cb Callback) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.callbacks {
		if existing == cb {
			b.callbacks = append(b.callbacks[:i], b.callbacks[i+1:]...)
			return true
		}
	}
	return false
}

// Callbacks returns a snapshot of the callback list. Iterating the snapshot
// keeps reentrant register/remove during dispatch safe.
func (b *Base) Callbacks() []Callback {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Callback, len(b.callbacks))
	copy(out, b.callbacks)
	return out
}

// NumCallbacks returns the number of registered callbacks.
func (b *Base) NumCallbacks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.callbacks)
}

// Func adapts plain functions into a Command. A nil undo function makes the
// command non-undoable.
type Func struct {
	Base
	name    string
	execute func(cl commandline.CommandLine) (string, error)
	undo    func(cl commandline.CommandLine) (string, error)
}

// NewFunc creates a function-backed command.
func NewFunc(name string, execute, undo func(cl commandline.CommandLine) (string, error)) *Func {
	return &Func{
		name:    name,
		execute: execute,
		undo:    undo,
	}
}

// Name returns the command name.
func (f *Func) Name() string { return f.name }

// Undoable reports whether an undo function was supplied.
func (f *Func) Undoable() bool { return f.undo != nil }

// Execute invokes the execute function.
func (f *Func) Execute(cl commandline.CommandLine) (string, error) {
	return f.execute(cl)
}

// Undo invokes the undo function, or does nothing when absent.
func (f *Func) Undo(cl commandline.CommandLine) (string, error) {
	if f.undo == nil {
		return "", nil
	}
	return f.undo(cl)
}
