package manager

import (
	"testing"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
)

// lifecycleCallback records every hook invocation.
type lifecycleCallback struct {
	tag    string
	events *[]string
}

func (c *lifecycleCallback) PreExecute(name string, cl commandline.CommandLine) {
	*c.events = append(*c.events, c.tag+":pre-execute:"+name)
}

func (c *lifecycleCallback) PostExecute(name string, cl commandline.CommandLine, result string, err error) {
	*c.events = append(*c.events, c.tag+":post-execute:"+name)
}

func (c *lifecycleCallback) PreUndo(name string, cl commandline.CommandLine) {
	*c.events = append(*c.events, c.tag+":pre-undo:"+name)
}

func (c *lifecycleCallback) PostUndo(name string, cl commandline.CommandLine, result string, err error) {
	*c.events = append(*c.events, c.tag+":post-undo:"+name)
}

func (c *lifecycleCallback) ShowErrorReport(errs []string) {
	*c.events = append(*c.events, c.tag+":report")
}

// perCommandRecorder observes a single command.
type perCommandRecorder struct {
	command.NopCallback
	events *[]string
}

func (c *perCommandRecorder) PreExecute(cl commandline.CommandLine) {
	*c.events = append(*c.events, "cmd:pre-execute")
}

func (c *perCommandRecorder) PostUndo(cl commandline.CommandLine, result string, err error) {
	*c.events = append(*c.events, "cmd:post-undo")
}

func TestCallbackLifecycleOrder(t *testing.T) {
	m, _ := newTestManager()

	var events []string
	m.RegisterCallback(&lifecycleCallback{tag: "a", events: &events})
	m.RegisterCallback(&lifecycleCallback{tag: "b", events: &events})

	if _, err := m.Execute("create box"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{
		"a:pre-execute:create", "b:pre-execute:create",
		"a:post-execute:create", "b:post-execute:create",
	}
	if len(events) != len(want) {
		t.Fatalf("wrong events: %v", events)
	}
	for i, e := range want {
		if events[i] != e {
			t.Fatalf("event %d: got %q want %q (all: %v)", i, events[i], e, events)
		}
	}

	events = nil
	if _, err := m.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	want = []string{
		"a:pre-undo:create", "b:pre-undo:create",
		"a:post-undo:create", "b:post-undo:create",
	}
	for i, e := range want {
		if events[i] != e {
			t.Fatalf("undo event %d: got %q want %q (all: %v)", i, events[i], e, events)
		}
	}
}

func TestPerCommandCallback(t *testing.T) {
	m, _ := newTestManager()

	var events []string
	if err := m.RegisterCommandCallback("create", &perCommandRecorder{events: &events}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	// Per-command callbacks only fire for their command.
	if _, err := m.Execute("create box"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Execute("delete box"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(events) != 1 || events[0] != "cmd:pre-execute" {
		t.Fatalf("wrong events: %v", events)
	}

	// And they fire on undo of their command's history entries.
	events = nil
	if _, err := m.Undo(); err != nil { // undoes delete
		t.Fatalf("undo delete: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("delete undo should not notify create's callback: %v", events)
	}
	if _, err := m.Undo(); err != nil { // undoes create
		t.Fatalf("undo create: %v", err)
	}
	if len(events) != 1 || events[0] != "cmd:post-undo" {
		t.Fatalf("wrong undo events: %v", events)
	}
}

func TestRegisterCommandCallbackUnknown(t *testing.T) {
	m, _ := newTestManager()

	err := m.RegisterCommandCallback("bogus", &perCommandRecorder{})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRemoveCommandCallbackAll(t *testing.T) {
	m, _ := newTestManager()

	var events []string
	cb := &perCommandRecorder{events: &events}
	if err := m.RegisterCommandCallback("create", cb); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.RegisterCommandCallback("delete", cb); err != nil {
		t.Fatalf("register: %v", err)
	}

	if n := m.RemoveCommandCallbackAll(cb); n != 2 {
		t.Errorf("expected 2 removals, got %d", n)
	}
	if n := m.RemoveCommandCallbackAll(cb); n != 0 {
		t.Errorf("second pass should remove nothing, got %d", n)
	}
}

// reentrantCallback removes itself and registers a replacement during
// dispatch.
type reentrantCallback struct {
	NopCallback
	m      *Manager
	events *[]string
}

func (c *reentrantCallback) PreExecute(name string, cl commandline.CommandLine) {
	*c.events = append(*c.events, "reentrant:pre")
	c.m.RemoveCallback(c)
	c.m.RegisterCallback(&lifecycleCallback{tag: "late", events: c.events})
}

func TestReentrantCallbackMutation(t *testing.T) {
	m, _ := newTestManager()

	var events []string
	m.RegisterCallback(&reentrantCallback{m: m, events: &events})

	// Mutating the callback set mid-dispatch must not panic or skip the
	// snapshot; the replacement sees later invocations only.
	if _, err := m.Execute("create box"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if m.NumCallbacks() != 1 {
		t.Errorf("expected 1 callback after swap, got %d", m.NumCallbacks())
	}

	events = nil
	if _, err := m.Execute("create sphere"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	found := false
	for _, e := range events {
		if e == "late:pre-execute:create" {
			found = true
		}
	}
	if !found {
		t.Errorf("replacement callback not active: %v", events)
	}
}

// executingCallback runs a nested command from inside a hook.
type executingCallback struct {
	NopCallback
	m    *Manager
	done bool
}

func (c *executingCallback) PostExecute(name string, cl commandline.CommandLine, result string, err error) {
	if c.done || name != "create" {
		return
	}
	c.done = true
	_, _ = c.m.ExecuteInsideCommand("create observer")
}

func TestCallbackMayExecuteCommands(t *testing.T) {
	m, store := newTestManager()
	m.RegisterCallback(&executingCallback{m: m})

	if _, err := m.Execute("create box"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !store.has("observer") {
		t.Error("nested execution from callback should run")
	}
	// The nested invocation stays out of history.
	if m.NumHistoryItems() != 1 {
		t.Errorf("expected 1 history entry, got %d", m.NumHistoryItems())
	}
}
