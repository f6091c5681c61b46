// Package script hosts Lua-defined commands.
//
// A Host loads Lua files into per-script interpreter states and exposes a
// small "cmdstack" module to them:
//
//	cmdstack.register{
//	    name = "greet",
//	    execute = function(cmd) return "hello " .. cmd.args[1] end,
//	    undo = function(cmd) return "" end,
//	}
//
//	cmdstack.execute("create box")  -- nested invocation
//	cmdstack.error("something went wrong")
//
// Registered commands behave like any other command: they participate in
// history, callbacks, and error reporting. The execute and undo functions
// receive a table with the command name, positional args, and flags, and
// return a result string; returning nil plus a message reports failure.
//
// Each loaded script gets a unique host ID so all of its commands can be
// unregistered together when the script is unloaded.
package script
