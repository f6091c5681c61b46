package manager

import (
	"errors"
	"testing"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
)

func namedCommand(name string) command.Command {
	return command.NewFunc(name,
		func(cl commandline.CommandLine) (string, error) { return "", nil }, nil)
}

func TestRegistryRegisterAndFind(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(namedCommand("Select")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if r.Find("select") == nil || r.Find("SELECT") == nil || r.Find("Select") == nil {
		t.Error("find should be case-insensitive")
	}
	if r.Find("other") != nil {
		t.Error("missing command should return nil")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(namedCommand("select")); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register(namedCommand("SELECT"))
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Fatalf("expected ErrDuplicateCommand, got %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("failed registration mutated registry: %d", r.Count())
	}
}

func TestRegistryEmptyName(t *testing.T) {
	r := NewRegistry()

	err := r.Register(namedCommand(""))
	if !errors.Is(err, ErrInvalidCommandName) {
		t.Fatalf("expected ErrInvalidCommandName, got %v", err)
	}
}

func TestRegistryOrderAndNames(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(namedCommand(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	names := r.Names()
	if len(names) != 3 || names[0] != "zeta" || names[1] != "alpha" || names[2] != "mid" {
		t.Errorf("names should follow registration order: %v", names)
	}

	cmd, err := r.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cmd.Name() != "alpha" {
		t.Errorf("wrong command at index 1: %q", cmd.Name())
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(namedCommand("first")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(namedCommand("second")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !r.Unregister("FIRST") {
		t.Error("unregister should match case-insensitively")
	}
	if r.Unregister("first") {
		t.Error("unregister of missing command should fail")
	}
	if r.Count() != 1 {
		t.Errorf("wrong count after unregister: %d", r.Count())
	}
	if r.Find("first") != nil {
		t.Error("unregistered command still findable")
	}

	names := r.Names()
	if len(names) != 1 || names[0] != "second" {
		t.Errorf("wrong survivors: %v", names)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(namedCommand("a")); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.Clear()

	if r.Count() != 0 || r.Find("a") != nil {
		t.Error("clear should remove everything")
	}

	// Names freed for re-registration.
	if err := r.Register(namedCommand("a")); err != nil {
		t.Errorf("re-register after clear: %v", err)
	}
}
