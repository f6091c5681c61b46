// Package history provides the bounded undo/redo timeline for executed
// commands.
//
// The Stack is an ordered, size-bounded sequence of entries with a movable
// cursor. Entries at or below the cursor are undoable; entries above it are
// redoable. Pushing while the cursor is not at the tail truncates the redo
// branch first, enforcing a strict linear timeline. When the size bound is
// exceeded the oldest entries are evicted first and the cursor shifts down
// with them.
//
// Every entry carries a globally monotonic item number assigned at push.
// Item numbers are never reused and survive undo, redo, and eviction.
//
// An Entry holds either a single executed command with its parameters or an
// executed command group; a group undoes and redoes as one atomic step.
package history
