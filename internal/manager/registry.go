package manager

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/cmdstack/internal/command"
)

// Registry holds named command objects. Lookup is case-insensitive;
// enumeration follows registration order.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]command.Command
	ordered []command.Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]command.Command),
	}
}

// Register adds a command. It fails when a command with the same
// case-insensitive name already exists.
func (r *Registry) Register(cmd command.Command) error {
	name := cmd.Name()
	if name == "" {
		return ErrInvalidCommandName
	}

	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}

	r.byName[key] = cmd
	r.ordered = append(r.ordered, cmd)
	return nil
}

// Unregister removes a command by name. Returns false if no command with
// that name is registered.
func (r *Registry) Unregister(name string) bool {
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, exists := r.byName[key]
	if !exists {
		return false
	}

	delete(r.byName, key)
	for i, existing := range r.ordered {
		if existing == cmd {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return true
}

// Find returns the command with the given case-insensitive name, or nil.
func (r *Registry) Find(name string) command.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[strings.ToLower(name)]
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Get returns the command at index i in registration order.
func (r *Registry) Get(i int) (command.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.ordered) {
		return nil, ErrIndexOutOfRange
	}
	return r.ordered[i], nil
}

// Names returns all registered command names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.ordered))
	for i, cmd := range r.ordered {
		names[i] = cmd.Name()
	}
	return names
}

// Commands returns a snapshot of all registered commands in registration
// order.
func (r *Registry) Commands() []command.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]command.Command, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Clear removes all registered commands. Called at manager teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName = make(map[string]command.Command)
	r.ordered = nil
}
