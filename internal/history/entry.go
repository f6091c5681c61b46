package history

import (
	"fmt"
	"time"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
	"github.com/dshills/cmdstack/internal/group"
)

// Entry is one undoable/redoable unit: either a single executed command with
// its parameters, or an executed command group. Entries are immutable once
// pushed; the stack fills in the item number and timestamp.
type Entry struct {
	cmd    command.Command
	params commandline.CommandLine
	grp    *group.Group

	itemNr    uint64
	timestamp time.Time
}

// NewCommandEntry creates an entry for a single executed command.
func NewCommandEntry(cmd command.Command, params commandline.CommandLine) *Entry {
	return &Entry{cmd: cmd, params: params}
}

// NewGroupEntry creates an entry for an executed command group.
func NewGroupEntry(g *group.Group) *Entry {
	return &Entry{grp: g}
}

// IsGroup reports whether the entry holds a command group.
func (e *Entry) IsGroup() bool { return e.grp != nil }

// Command returns the executed command, or nil for a group entry.
func (e *Entry) Command() command.Command { return e.cmd }

// Params returns the parameters the command executed with.
func (e *Entry) Params() commandline.CommandLine { return e.params }

// Group returns the executed group, or nil for a single-command entry.
func (e *Entry) Group() *group.Group { return e.grp }

// ItemNr returns the entry's global item number. Item numbers increase
// monotonically across the life of the stack and are never reused.
func (e *Entry) ItemNr() uint64 { return e.itemNr }

// Timestamp returns when the entry was pushed.
func (e *Entry) Timestamp() time.Time { return e.timestamp }

// Description returns a display string for the entry.
func (e *Entry) Description() string {
	if e.grp != nil {
		return e.grp.Description()
	}
	if s := e.params.String(); s != "" {
		return s
	}
	return e.cmd.Name()
}

// String renders the entry for history listings.
func (e *Entry) String() string {
	return fmt.Sprintf("%03d - %s", e.itemNr, e.Description())
}
