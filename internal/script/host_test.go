package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dshills/cmdstack/internal/manager"
)

const counterScript = `
local value = 0

cmdstack.register({
	name = "incr",
	execute = function(inv)
		local by = 1
		if inv.flags.by ~= nil then
			by = tonumber(inv.flags.by)
		end
		value = value + by
		return tostring(value), nil
	end,
	undo = function(inv)
		local by = 1
		if inv.flags.by ~= nil then
			by = tonumber(inv.flags.by)
		end
		value = value - by
		return tostring(value), nil
	end,
})

cmdstack.register({
	name = "fail",
	execute = function(inv)
		return nil, "always fails"
	end,
})
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newHost(t *testing.T) (*Host, *manager.Manager) {
	t.Helper()
	mgr := manager.NewWithDefaults()
	h := NewHost(mgr, zerolog.Nop())
	t.Cleanup(h.Close)
	return h, mgr
}

func TestLoadFileRegistersCommands(t *testing.T) {
	h, mgr := newHost(t)
	path := writeScript(t, t.TempDir(), "counter.lua", counterScript)

	s, err := h.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.ID == "" {
		t.Error("expected non-empty script ID")
	}
	if got := s.Commands(); len(got) != 2 || got[0] != "incr" || got[1] != "fail" {
		t.Errorf("Commands() = %v, want [incr fail]", got)
	}
	if mgr.FindCommand("incr") == nil {
		t.Error("incr not registered with manager")
	}
}

func TestScriptCommandExecuteAndUndo(t *testing.T) {
	h, mgr := newHost(t)
	path := writeScript(t, t.TempDir(), "counter.lua", counterScript)
	if _, err := h.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	result, err := mgr.Execute("incr -by 5")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != "5" {
		t.Errorf("result = %q, want %q", result, "5")
	}

	result, err = mgr.Execute("incr")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != "6" {
		t.Errorf("result = %q, want %q", result, "6")
	}

	result, err = mgr.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if result != "5" {
		t.Errorf("undo result = %q, want %q", result, "5")
	}

	result, err = mgr.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if result != "0" {
		t.Errorf("undo result = %q, want %q", result, "0")
	}
}

func TestScriptCommandFailure(t *testing.T) {
	h, mgr := newHost(t)
	path := writeScript(t, t.TempDir(), "counter.lua", counterScript)
	if _, err := h.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if _, err := mgr.Execute("fail"); err == nil {
		t.Fatal("expected error from failing script command")
	}
	if mgr.NumHistoryItems() != 0 {
		t.Errorf("failed command recorded in history: %d items", mgr.NumHistoryItems())
	}
}

func TestLoadFileError(t *testing.T) {
	h, _ := newHost(t)
	path := writeScript(t, t.TempDir(), "broken.lua", `this is not lua (`)

	if _, err := h.LoadFile(path); err == nil {
		t.Fatal("expected error loading broken script")
	}
	if len(h.Scripts()) != 0 {
		t.Error("broken script kept in host")
	}
}

func TestLoadDir(t *testing.T) {
	h, mgr := newHost(t)
	dir := t.TempDir()
	writeScript(t, dir, "b.lua", `cmdstack.register({name = "bee", execute = function(inv) return "b", nil end})`)
	writeScript(t, dir, "a.lua", `cmdstack.register({name = "ay", execute = function(inv) return "a", nil end})`)
	writeScript(t, dir, "notes.txt", `ignored`)

	scripts, err := h.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("loaded %d scripts, want 2", len(scripts))
	}
	if filepath.Base(scripts[0].Path) != "a.lua" {
		t.Errorf("scripts loaded out of order: first is %s", scripts[0].Path)
	}
	if mgr.FindCommand("ay") == nil || mgr.FindCommand("bee") == nil {
		t.Error("directory scripts did not register their commands")
	}
}

func TestUnloadRemovesCommands(t *testing.T) {
	h, mgr := newHost(t)
	path := writeScript(t, t.TempDir(), "counter.lua", counterScript)
	s, err := h.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if err := h.Unload(s.ID); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if mgr.FindCommand("incr") != nil {
		t.Error("incr still registered after unload")
	}
	if err := h.Unload(s.ID); err == nil {
		t.Error("expected error unloading twice")
	}
}

func TestNestedExecuteFromScript(t *testing.T) {
	h, mgr := newHost(t)
	dir := t.TempDir()
	writeScript(t, dir, "nested.lua", `
cmdstack.register({
	name = "leaf",
	execute = function(inv)
		return "leaf:" .. inv.args[1], nil
	end,
})

cmdstack.register({
	name = "outer",
	execute = function(inv)
		local r, err = cmdstack.execute("leaf inner")
		if r == nil then
			return nil, err
		end
		return "outer/" .. r, nil
	end,
})
`)
	if _, err := h.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	result, err := mgr.Execute("outer")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != "outer/leaf:inner" {
		t.Errorf("result = %q, want %q", result, "outer/leaf:inner")
	}
	if mgr.NumHistoryItems() != 0 {
		t.Errorf("non-undoable commands recorded in history: %d items", mgr.NumHistoryItems())
	}
}
