package group

import (
	"testing"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
)

func newTestCommand(name string, undoable bool) command.Command {
	var undo func(cl commandline.CommandLine) (string, error)
	if undoable {
		undo = func(cl commandline.CommandLine) (string, error) { return "", nil }
	}
	return command.NewFunc(name, func(cl commandline.CommandLine) (string, error) {
		return "", nil
	}, undo)
}

func TestGroupDefaults(t *testing.T) {
	g := New("Create Scene")
	if g.Name() != "Create Scene" {
		t.Errorf("wrong name: %q", g.Name())
	}
	if !g.ContinueAfterError() {
		t.Error("groups should continue after error by default")
	}
	if g.AddToHistoryAfterError() {
		t.Error("partial groups should not enter history by default")
	}
	if g.Len() != 0 {
		t.Error("new group should be empty")
	}
}

func TestGroupPendingOrder(t *testing.T) {
	g := New("batch")
	g.AddCommandString("create box")
	g.AddCommand(newTestCommand("delete", true), commandline.CommandLine{})
	g.AddCommandString("create sphere")

	if g.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", g.Len())
	}
	if g.Item(0).Text != "create box" {
		t.Errorf("wrong first item: %q", g.Item(0).Text)
	}
	if g.Item(1).Cmd == nil {
		t.Error("second item should be pre-bound")
	}
	if g.Item(2).Text != "create sphere" {
		t.Errorf("wrong third item: %q", g.Item(2).Text)
	}
}

func TestGroupInvocations(t *testing.T) {
	g := New("batch")
	first := newTestCommand("first", true)
	second := newTestCommand("second", false)

	g.RecordInvocation(first, commandline.CommandLine{})
	g.RecordInvocation(second, commandline.CommandLine{})

	invs := g.Invocations()
	if len(invs) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(invs))
	}
	if invs[0].Cmd.Name() != "first" || invs[1].Cmd.Name() != "second" {
		t.Error("invocations not in execution order")
	}
	if !g.HasUndoable() {
		t.Error("group with an undoable member should report undoable")
	}

	g.ClearInvocations()
	if len(g.Invocations()) != 0 {
		t.Error("invocations not cleared")
	}
	if g.HasUndoable() {
		t.Error("cleared group should not report undoable")
	}
}

func TestGroupSnapshot(t *testing.T) {
	g := New("batch")
	g.AddCommandString("create box")
	g.RecordInvocation(newTestCommand("create", true), commandline.CommandLine{})

	s := g.Snapshot()
	if s.Len() != 0 {
		t.Error("snapshot should not carry pending items")
	}
	if len(s.Invocations()) != 1 {
		t.Fatal("snapshot should carry recorded invocations")
	}

	// Resetting the original must not affect the snapshot.
	g.RemoveAllCommands()
	if len(s.Invocations()) != 1 {
		t.Error("snapshot shares state with original")
	}
}

func TestGroupDescription(t *testing.T) {
	g := New("My Batch")
	if g.Description() != "My Batch" {
		t.Errorf("wrong description: %q", g.Description())
	}

	anon := New("")
	anon.RecordInvocation(newTestCommand("a", true), commandline.CommandLine{})
	anon.RecordInvocation(newTestCommand("b", true), commandline.CommandLine{})
	if anon.Description() != "2 commands" {
		t.Errorf("wrong anonymous description: %q", anon.Description())
	}
}
