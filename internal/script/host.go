package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cmdstack/internal/manager"
)

// ErrScriptNotFound indicates an unknown script ID.
var ErrScriptNotFound = errors.New("script: script not found")

// Script is one loaded Lua file and the commands it registered.
type Script struct {
	// ID uniquely identifies the loaded script instance.
	ID string

	// Path is the file the script was loaded from.
	Path string

	state    *lua.LState
	commands []string
}

// Commands returns the names of the commands the script registered.
func (s *Script) Commands() []string {
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Host loads Lua scripts and bridges their commands into the manager.
type Host struct {
	mgr *manager.Manager
	log zerolog.Logger

	mu      sync.Mutex
	scripts map[string]*Script
}

// NewHost creates a script host backed by the given manager.
func NewHost(mgr *manager.Manager, log zerolog.Logger) *Host {
	return &Host{
		mgr:     mgr,
		log:     log,
		scripts: make(map[string]*Script),
	}
}

// LoadFile loads a Lua script, running it so it can register commands.
func (h *Host) LoadFile(path string) (*Script, error) {
	L := lua.NewState()

	s := &Script{
		ID:    uuid.NewString(),
		Path:  path,
		state: L,
	}

	h.installModule(L, s)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("script %s: %w", path, err)
	}

	h.mu.Lock()
	h.scripts[s.ID] = s
	h.mu.Unlock()

	h.log.Info().
		Str("script", path).
		Str("id", s.ID).
		Strs("commands", s.commands).
		Msg("loaded script")
	return s, nil
}

// LoadDir loads every .lua file in a directory in lexical order.
func (h *Host) LoadDir(dir string) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("script dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	var scripts []*Script
	for _, path := range paths {
		s, err := h.LoadFile(path)
		if err != nil {
			return scripts, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// Unload unregisters a script's commands and closes its interpreter.
func (h *Host) Unload(id string) error {
	h.mu.Lock()
	s, ok := h.scripts[id]
	if ok {
		delete(h.scripts, id)
	}
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, id)
	}

	for _, name := range s.commands {
		h.mgr.UnregisterCommand(name)
	}
	s.state.Close()

	h.log.Info().Str("script", s.Path).Str("id", id).Msg("unloaded script")
	return nil
}

// Scripts returns the loaded scripts in no particular order.
func (h *Host) Scripts() []*Script {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*Script, 0, len(h.scripts))
	for _, s := range h.scripts {
		out = append(out, s)
	}
	return out
}

// Close unloads all scripts.
func (h *Host) Close() {
	h.mu.Lock()
	scripts := make([]*Script, 0, len(h.scripts))
	for _, s := range h.scripts {
		scripts = append(scripts, s)
	}
	h.scripts = make(map[string]*Script)
	h.mu.Unlock()

	for _, s := range scripts {
		for _, name := range s.commands {
			h.mgr.UnregisterCommand(name)
		}
		s.state.Close()
	}
}

// installModule registers the cmdstack module into the Lua state.
func (h *Host) installModule(L *lua.LState, s *Script) {
	mod := L.NewTable()

	L.SetField(mod, "register", L.NewFunction(h.luaRegister(s)))
	L.SetField(mod, "execute", L.NewFunction(h.luaExecute))
	L.SetField(mod, "error", L.NewFunction(h.luaError))

	L.SetGlobal("cmdstack", mod)
}

// luaRegister implements cmdstack.register(opts).
// opts must include: name, execute.
// opts can include: undo, undoable.
func (h *Host) luaRegister(s *Script) lua.LGFunction {
	return func(L *lua.LState) int {
		opts := L.CheckTable(1)

		name := lua.LVAsString(L.GetField(opts, "name"))
		if name == "" {
			L.ArgError(1, "name is required")
			return 0
		}

		execute := L.GetField(opts, "execute")
		if execute.Type() != lua.LTFunction {
			L.ArgError(1, "execute must be a function")
			return 0
		}

		var undo *lua.LFunction
		if v := L.GetField(opts, "undo"); v.Type() == lua.LTFunction {
			undo = v.(*lua.LFunction)
		}

		undoable := undo != nil
		if v := L.GetField(opts, "undoable"); v.Type() == lua.LTBool {
			undoable = lua.LVAsBool(v)
		}

		cmd := &luaCommand{
			name:     name,
			undoable: undoable,
			state:    L,
			execute:  execute.(*lua.LFunction),
			undo:     undo,
		}

		if err := h.mgr.RegisterCommand(cmd); err != nil {
			L.RaiseError("register: %v", err)
			return 0
		}

		s.commands = append(s.commands, name)
		return 0
	}
}

// luaExecute implements cmdstack.execute(text) -> result | nil, err.
// The invocation runs nested: it shares the ambient error buffer and stays
// out of history.
func (h *Host) luaExecute(L *lua.LState) int {
	text := L.CheckString(1)

	result, err := h.mgr.ExecuteInsideCommand(text)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	L.Push(lua.LString(result))
	return 1
}

// luaError implements cmdstack.error(line), appending to the manager's
// error collector.
func (h *Host) luaError(L *lua.LState) int {
	h.mgr.AddError(L.CheckString(1))
	return 0
}
