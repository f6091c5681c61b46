package history

import (
	"errors"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo   = errors.New("history: nothing to undo")
	ErrNothingToRedo   = errors.New("history: nothing to redo")
	ErrIndexOutOfRange = errors.New("history: index out of range")
)

// DefaultMaxEntries is the history bound used when none is configured.
const DefaultMaxEntries = 100

// EntryInfo is a read-only projection of an entry for listings.
type EntryInfo struct {
	ItemNr      uint64
	Description string
	Timestamp   time.Time
}

// Stack is the bounded undo/redo timeline.
//
// The cursor index points at the most recently executed entry; -1 means
// "before first". Entries at or below the cursor undo; entries above it
// redo.
type Stack struct {
	mu sync.Mutex

	entries []*Entry
	index   int

	maxEntries int
	nextItemNr uint64
}

// NewStack creates a stack bounded to maxEntries. Values <= 0 select
// DefaultMaxEntries.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Stack{
		index:      -1,
		maxEntries: maxEntries,
	}
}

// Push appends an entry at the cursor, truncating the redo branch and
// evicting the oldest entries when the bound is exceeded. The entry receives
// the next global item number.
func (s *Stack) Push(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Discard the redo branch.
	s.entries = s.entries[:s.index+1]

	s.nextItemNr++
	e.itemNr = s.nextItemNr
	e.timestamp = time.Now()

	s.entries = append(s.entries, e)
	s.index = len(s.entries) - 1

	for len(s.entries) > s.maxEntries {
		s.entries = s.entries[1:]
		s.index--
	}
	if s.index < -1 {
		s.index = -1
	}
}

// PeekUndo returns the entry at the cursor without moving it.
func (s *Stack) PeekUndo() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < 0 {
		return nil, ErrNothingToUndo
	}
	return s.entries[s.index], nil
}

// StepBack moves the cursor one entry into the past. Called after a
// successful undo.
func (s *Stack) StepBack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= 0 {
		s.index--
	}
}

// PeekRedo returns the entry just above the cursor without moving it.
func (s *Stack) PeekRedo() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index+1 >= len(s.entries) {
		return nil, ErrNothingToRedo
	}
	return s.entries[s.index+1], nil
}

// StepForward moves the cursor one entry into the future. Called after a
// successful redo.
func (s *Stack) StepForward() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index+1 < len(s.entries) {
		s.index++
	}
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index+1 < len(s.entries)
}

// Len returns the number of stored entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Index returns the cursor position, or -1 when before the first entry.
func (s *Stack) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Entry returns the entry at index i.
func (s *Stack) Entry(i int) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.entries) {
		return nil, ErrIndexOutOfRange
	}
	return s.entries[i], nil
}

// Infos returns projections of all entries in timeline order.
func (s *Stack) Infos() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, len(s.entries))
	for i, e := range s.entries {
		out[i] = EntryInfo{
			ItemNr:      e.itemNr,
			Description: e.Description(),
			Timestamp:   e.timestamp,
		}
	}
	return out
}

// Clear removes all entries and resets the cursor. Item numbers keep
// counting from where they left off.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = -1
}

// SetMaxEntries changes the history bound, evicting oldest entries
// immediately if the current size exceeds it. Values <= 0 select
// DefaultMaxEntries.
func (s *Stack) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxEntries = max

	for len(s.entries) > max {
		s.entries = s.entries[1:]
		s.index--
	}
	if s.index < -1 {
		s.index = -1
	}
}

// MaxEntries returns the history bound.
func (s *Stack) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}
