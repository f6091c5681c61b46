package manager

import "github.com/dshills/cmdstack/internal/commandline"

// Callback observes every command the manager executes, undoes, or redoes,
// plus error reports. Manager-level callbacks fire for all commands; use
// per-command callbacks (command.Callback) to observe a single command.
//
// Hooks are notified in registration order. A hook may execute further
// commands or register and remove callbacks; dispatch iterates a snapshot,
// so reentrant mutation is safe.
type Callback interface {
	// PreExecute runs before a command executes.
	PreExecute(name string, cl commandline.CommandLine)

	// PostExecute runs after a command executed, successfully or not.
	PostExecute(name string, cl commandline.CommandLine, result string, err error)

	// PreUndo runs before a command is undone.
	PreUndo(name string, cl commandline.CommandLine)

	// PostUndo runs after a command was undone, successfully or not.
	PostUndo(name string, cl commandline.CommandLine, result string, err error)

	// ShowErrorReport receives the accumulated error lines of an
	// invocation chain.
	ShowErrorReport(errors []string)
}

// NopCallback is a Callback with empty hooks, for embedding.
type NopCallback struct{}

func (NopCallback) PreExecute(string, commandline.CommandLine)                 {}
func (NopCallback) PostExecute(string, commandline.CommandLine, string, error) {}
func (NopCallback) PreUndo(string, commandline.CommandLine)                    {}
func (NopCallback) PostUndo(string, commandline.CommandLine, string, error)    {}
func (NopCallback) ShowErrorReport([]string)                                   {}
