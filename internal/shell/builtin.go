package shell

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
	"github.com/dshills/cmdstack/internal/manager"
)

// Store is a string key/value store mutated by the built-in commands.
type Store struct {
	mu     sync.Mutex
	values map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for a key and whether it exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under a key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// setCommand writes a key and remembers what it replaced so undo can
// restore it. Each invocation runs on a fresh clone.
type setCommand struct {
	command.Base
	store *Store

	prevValue string
	prevSet   bool
}

func (c *setCommand) Name() string   { return "set" }
func (c *setCommand) Undoable() bool { return true }

func (c *setCommand) Clone() command.Command {
	return &setCommand{store: c.store}
}

func (c *setCommand) Execute(cl commandline.CommandLine) (string, error) {
	if cl.NumArgs() != 2 {
		return "", fmt.Errorf("set: want 2 arguments, got %d", cl.NumArgs())
	}
	key, value := cl.Arg(0), cl.Arg(1)

	c.prevValue, c.prevSet = c.store.Get(key)
	c.store.Set(key, value)
	return fmt.Sprintf("%s = %s", key, value), nil
}

func (c *setCommand) Undo(cl commandline.CommandLine) (string, error) {
	key := cl.Arg(0)
	if c.prevSet {
		c.store.Set(key, c.prevValue)
		return fmt.Sprintf("%s = %s", key, c.prevValue), nil
	}
	c.store.Delete(key)
	return fmt.Sprintf("%s unset", key), nil
}

// unsetCommand deletes a key, restoring it on undo.
type unsetCommand struct {
	command.Base
	store *Store

	prevValue string
	prevSet   bool
}

func (c *unsetCommand) Name() string   { return "unset" }
func (c *unsetCommand) Undoable() bool { return true }

func (c *unsetCommand) Clone() command.Command {
	return &unsetCommand{store: c.store}
}

func (c *unsetCommand) Execute(cl commandline.CommandLine) (string, error) {
	if cl.NumArgs() != 1 {
		return "", fmt.Errorf("unset: want 1 argument, got %d", cl.NumArgs())
	}
	key := cl.Arg(0)

	c.prevValue, c.prevSet = c.store.Get(key)
	if !c.prevSet {
		return "", fmt.Errorf("unset: unknown key %q", key)
	}
	c.store.Delete(key)
	return fmt.Sprintf("%s unset", key), nil
}

func (c *unsetCommand) Undo(cl commandline.CommandLine) (string, error) {
	key := cl.Arg(0)
	c.store.Set(key, c.prevValue)
	return fmt.Sprintf("%s = %s", key, c.prevValue), nil
}

// RegisterBuiltins registers the key/value store commands with the manager.
func RegisterBuiltins(mgr *manager.Manager, store *Store) error {
	cmds := []command.Command{
		&setCommand{store: store},
		&unsetCommand{store: store},
		command.NewFunc("get", func(cl commandline.CommandLine) (string, error) {
			if cl.NumArgs() != 1 {
				return "", fmt.Errorf("get: want 1 argument, got %d", cl.NumArgs())
			}
			v, ok := store.Get(cl.Arg(0))
			if !ok {
				return "", fmt.Errorf("get: unknown key %q", cl.Arg(0))
			}
			return v, nil
		}, nil),
		command.NewFunc("list", func(cl commandline.CommandLine) (string, error) {
			keys := store.Keys()
			lines := make([]string, 0, len(keys))
			for _, k := range keys {
				v, _ := store.Get(k)
				lines = append(lines, fmt.Sprintf("%s = %s", k, v))
			}
			return strings.Join(lines, "\n"), nil
		}, nil),
	}

	for _, cmd := range cmds {
		if err := mgr.RegisterCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}
