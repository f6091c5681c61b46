package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
)

// luaCommand bridges a script-registered command into the command contract.
// Undo state stays on the Lua side, so the command executes in place rather
// than cloning per invocation.
type luaCommand struct {
	command.Base

	name     string
	undoable bool

	state   *lua.LState
	execute *lua.LFunction
	undo    *lua.LFunction
}

func (c *luaCommand) Name() string   { return c.name }
func (c *luaCommand) Undoable() bool { return c.undoable }

// Execute calls the script's execute function.
func (c *luaCommand) Execute(cl commandline.CommandLine) (string, error) {
	return c.call(c.execute, cl)
}

// Undo calls the script's undo function, or does nothing when absent.
func (c *luaCommand) Undo(cl commandline.CommandLine) (string, error) {
	if c.undo == nil {
		return "", nil
	}
	return c.call(c.undo, cl)
}

// call invokes a Lua function with the invocation table and interprets the
// (result, err) return convention: a nil result plus a message reports
// failure.
func (c *luaCommand) call(fn *lua.LFunction, cl commandline.CommandLine) (string, error) {
	L := c.state

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, c.invocationTable(cl)); err != nil {
		return "", fmt.Errorf("script command %q: %w", c.name, err)
	}

	errv := L.Get(-1)
	resv := L.Get(-2)
	L.Pop(2)

	if resv == lua.LNil && errv != lua.LNil {
		return "", fmt.Errorf("script command %q: %s", c.name, lua.LVAsString(errv))
	}
	return lua.LVAsString(resv), nil
}

// invocationTable builds {name=..., args={...}, flags={...}} for the script.
func (c *luaCommand) invocationTable(cl commandline.CommandLine) *lua.LTable {
	L := c.state

	tbl := L.NewTable()
	L.SetField(tbl, "name", lua.LString(c.name))

	args := L.NewTable()
	for i := 0; i < cl.NumArgs(); i++ {
		args.Append(lua.LString(cl.Arg(i)))
	}
	L.SetField(tbl, "args", args)

	flags := L.NewTable()
	for _, name := range cl.FlagNames() {
		L.SetField(flags, name, lua.LString(cl.Flag(name)))
	}
	L.SetField(tbl, "flags", flags)

	return tbl
}
