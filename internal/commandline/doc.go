// Package commandline parses command invocation strings into structured,
// re-queryable argument lists.
//
// The grammar is intentionally small:
//
//	commandName arg1 arg2 -flag value "quoted text" ...
//
// The first token names the command. Remaining tokens are either positional
// arguments or -flag value pairs. Double-quoted tokens may contain spaces;
// inside quotes, \" escapes a quote character. Flag names are matched
// case-insensitively. A flag followed by another flag (or by nothing) is a
// presence flag with an empty value.
//
// Parse failures produce a *ParseError, which callers can distinguish from
// command execution errors with errors.As.
package commandline
