// Package shell provides a line-oriented interactive frontend for the
// command manager, plus a small set of built-in key/value commands that
// demonstrate undoable command implementations.
package shell
