// Package manager orchestrates command execution, undo/redo, and error
// reporting.
//
// The Manager composes a case-insensitive command Registry, a bounded
// undo/redo history, manager-level and per-command callback lists, and an
// error collector. It is the sole entry point for executing command strings
// and groups, undoing, redoing, and inspecting history.
//
// # Execution lifecycle
//
// A top-level invocation moves through parsing, registry resolution,
// pre-execute callbacks, execution, post-execute callbacks, and finally
// either a history push (on success, when the command is undoable) or an
// error report. Nested invocations started from inside a running command
// via ExecuteInsideCommand share the outer error buffer and skip both
// history and automatic error reporting.
//
// # Groups
//
// A command group executes as an ordered batch and enters history as one
// entry, so a single Undo reverts the whole batch in reverse order.
// BeginGroup/EndGroup and Transaction batch ad hoc Execute calls the same
// way.
//
// # Concurrency
//
// The manager is synchronous and reentrant but not goroutine-safe: callers
// invoking it from more than one goroutine must serialize access
// externally.
package manager
