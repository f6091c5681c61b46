package shell

import (
	"strings"
	"testing"

	"github.com/dshills/cmdstack/internal/manager"
)

func runSession(t *testing.T, lines ...string) (string, *manager.Manager, *Store) {
	t.Helper()

	mgr := manager.NewWithDefaults()
	store := NewStore()
	if err := RegisterBuiltins(mgr, store); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder
	sh := New(mgr, in, &out, WithPrompt(""))
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), mgr, store
}

func TestSetGetList(t *testing.T) {
	out, _, store := runSession(t,
		`set host "db.example.com"`,
		"set port 5432",
		"get host",
		"list",
		"quit",
	)

	if !strings.Contains(out, "db.example.com") {
		t.Errorf("output missing value:\n%s", out)
	}
	if !strings.Contains(out, "port = 5432") {
		t.Errorf("list output missing entry:\n%s", out)
	}
	if store.Len() != 2 {
		t.Errorf("store has %d keys, want 2", store.Len())
	}
}

func TestUndoRedoThroughShell(t *testing.T) {
	_, mgr, store := runSession(t,
		"set name first",
		"set name second",
		"undo",
		"quit",
	)

	if v, _ := store.Get("name"); v != "first" {
		t.Errorf("after undo name = %q, want %q", v, "first")
	}
	if !mgr.CanRedo() {
		t.Error("expected redo to be available")
	}

	if _, err := mgr.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if v, _ := store.Get("name"); v != "second" {
		t.Errorf("after redo name = %q, want %q", v, "second")
	}
}

func TestUnsetUndoRestoresValue(t *testing.T) {
	_, mgr, store := runSession(t,
		"set color blue",
		"unset color",
		"quit",
	)

	if _, ok := store.Get("color"); ok {
		t.Fatal("color still set after unset")
	}
	if _, err := mgr.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if v, _ := store.Get("color"); v != "blue" {
		t.Errorf("after undo color = %q, want %q", v, "blue")
	}
}

func TestRepeatedSetUndoesIndependently(t *testing.T) {
	_, mgr, store := runSession(t,
		"set n 1",
		"set n 2",
		"set n 3",
		"quit",
	)

	for _, want := range []string{"2", "1"} {
		if _, err := mgr.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
		if v, _ := store.Get("n"); v != want {
			t.Errorf("n = %q, want %q", v, want)
		}
	}

	if _, err := mgr.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, ok := store.Get("n"); ok {
		t.Error("n still set after undoing the first set")
	}
}

func TestErrorOutput(t *testing.T) {
	out, mgr, _ := runSession(t,
		"get nosuch",
		"bogus arg",
		"quit",
	)

	if !strings.Contains(out, "error:") {
		t.Errorf("output missing error lines:\n%s", out)
	}
	if mgr.NumHistoryItems() != 0 {
		t.Errorf("failures recorded in history: %d items", mgr.NumHistoryItems())
	}
}

func TestHistoryListing(t *testing.T) {
	out, _, _ := runSession(t,
		"set a 1",
		"set b 2",
		"history",
		"quit",
	)

	if !strings.Contains(out, "001 - ") || !strings.Contains(out, "002 - ") {
		t.Errorf("history listing missing numbered entries:\n%s", out)
	}
	if !strings.Contains(out, "* 002 - ") {
		t.Errorf("history cursor marker missing:\n%s", out)
	}
}

func TestCommandsListing(t *testing.T) {
	out, _, _ := runSession(t, "commands", "quit")

	for _, name := range []string{"set", "unset", "get", "list"} {
		if !strings.Contains(out, name) {
			t.Errorf("commands listing missing %q:\n%s", name, out)
		}
	}
}
