// Package command defines the contract for executable, undoable commands.
//
// A Command is a named unit of behavior that can be executed with a parsed
// command line and, if it reports itself undoable, reversed. Commands that
// carry per-invocation undo state additionally implement Cloner so the
// manager can execute a fresh instance each time and keep it alive in
// history; stateless commands skip Cloner and are executed in place.
//
// Per-command observers implement Callback and are attached to a registered
// command through the embedded Base. The manager notifies them around
// execute and undo of that command only.
package command
