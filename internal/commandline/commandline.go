package commandline

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError describes a malformed command invocation string.
type ParseError struct {
	// Input is the original invocation text.
	Input string

	// Message describes what went wrong.
	Message string
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Message)
}

// CommandLine is an immutable structured view over an invocation's arguments.
// The zero value is an empty, valid command line.
type CommandLine struct {
	raw       string
	args      []string
	flags     map[string]string
	flagOrder []string
}

// Parse splits an invocation string into a command name and its arguments.
// Malformed input yields a *ParseError.
func Parse(text string) (string, CommandLine, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return "", CommandLine{}, &ParseError{Input: text, Message: err.Error()}
	}
	if len(tokens) == 0 {
		return "", CommandLine{}, &ParseError{Input: text, Message: "empty command"}
	}

	name := tokens[0]
	cl := CommandLine{raw: strings.TrimSpace(text)}

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if !isFlag(tok) {
			cl.args = append(cl.args, tok)
			continue
		}

		key := strings.ToLower(tok[1:])
		value := ""
		if i+1 < len(tokens) && !isFlag(tokens[i+1]) {
			value = tokens[i+1]
			i++
		}

		if cl.flags == nil {
			cl.flags = make(map[string]string)
		}
		if _, exists := cl.flags[key]; !exists {
			cl.flagOrder = append(cl.flagOrder, key)
		}
		cl.flags[key] = value
	}

	return name, cl, nil
}

// isFlag reports whether a token introduces a flag.
// Negative numbers ("-5", "-.5") are positional arguments, not flags.
func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	r := rune(tok[1])
	return !unicode.IsDigit(r) && r != '.' && r != '-'
}

// tokenize splits text into whitespace-separated tokens, honoring double
// quotes and \" escapes inside quotes.
func tokenize(text string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	hasCur := false
	inQuote := false
	escaped := false

	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			hasCur = true
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
			hasCur = true
		case !inQuote && unicode.IsSpace(r):
			if hasCur {
				tokens = append(tokens, cur.String())
				cur.Reset()
				hasCur = false
			}
		default:
			cur.WriteRune(r)
			hasCur = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if escaped {
		return nil, fmt.Errorf("trailing escape")
	}
	if hasCur {
		tokens = append(tokens, cur.String())
	}

	return tokens, nil
}

// String returns the original invocation text, including the command name.
func (cl CommandLine) String() string {
	return cl.raw
}

// NumArgs returns the number of positional arguments.
func (cl CommandLine) NumArgs() int {
	return len(cl.args)
}

// Arg returns the positional argument at index i, or "" if out of range.
func (cl CommandLine) Arg(i int) string {
	if i < 0 || i >= len(cl.args) {
		return ""
	}
	return cl.args[i]
}

// Args returns a copy of all positional arguments.
func (cl CommandLine) Args() []string {
	out := make([]string, len(cl.args))
	copy(out, cl.args)
	return out
}

// NumFlags returns the number of flags.
func (cl CommandLine) NumFlags() int {
	return len(cl.flags)
}

// FlagNames returns flag names in first-appearance order.
func (cl CommandLine) FlagNames() []string {
	out := make([]string, len(cl.flagOrder))
	copy(out, cl.flagOrder)
	return out
}

// HasFlag reports whether the flag is present. Lookup is case-insensitive.
func (cl CommandLine) HasFlag(name string) bool {
	_, ok := cl.flags[strings.ToLower(name)]
	return ok
}

// Flag returns the flag's value, or "" if absent.
func (cl CommandLine) Flag(name string) string {
	return cl.flags[strings.ToLower(name)]
}

// LookupFlag returns the flag's value and whether it is present.
func (cl CommandLine) LookupFlag(name string) (string, bool) {
	v, ok := cl.flags[strings.ToLower(name)]
	return v, ok
}

// StringFlag returns the flag's value, or def if absent.
func (cl CommandLine) StringFlag(name, def string) string {
	if v, ok := cl.flags[strings.ToLower(name)]; ok {
		return v
	}
	return def
}

// IntFlag returns the flag's value as an int, or def if absent or not
// parseable.
func (cl CommandLine) IntFlag(name string, def int) int {
	v, ok := cl.flags[strings.ToLower(name)]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// FloatFlag returns the flag's value as a float64, or def if absent or not
// parseable.
func (cl CommandLine) FloatFlag(name string, def float64) float64 {
	v, ok := cl.flags[strings.ToLower(name)]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// BoolFlag returns the flag's value as a bool. A present flag with an empty
// value reads as true. Absent or unparseable values read as def.
func (cl CommandLine) BoolFlag(name string, def bool) bool {
	v, ok := cl.flags[strings.ToLower(name)]
	if !ok {
		return def
	}
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
