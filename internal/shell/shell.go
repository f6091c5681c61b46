package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/cmdstack/internal/manager"
)

// Shell is a line-oriented interactive frontend for the manager. Input
// lines are executed as commands; a handful of built-in words control the
// session itself.
type Shell struct {
	mgr *manager.Manager
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	prompt string
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt sets the prompt text.
func WithPrompt(prompt string) Option {
	return func(s *Shell) { s.prompt = prompt }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Shell) { s.log = log }
}

// New creates a shell reading from in and writing to out.
func New(mgr *manager.Manager, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		mgr:    mgr,
		in:     in,
		out:    out,
		log:    zerolog.Nop(),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads and executes lines until EOF or a quit command.
func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)

	for {
		fmt.Fprint(s.out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if quit := s.dispatch(line); quit {
			return nil
		}
	}
}

// dispatch handles one input line and reports whether the session should
// end.
func (s *Shell) dispatch(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit":
		return true
	case "help":
		s.printHelp()
	case "undo":
		s.report(s.mgr.Undo())
	case "redo":
		s.report(s.mgr.Redo())
	case "history":
		s.printHistory()
	case "errors":
		s.printErrors()
	case "commands":
		s.printCommands()
	default:
		s.log.Debug().Str("line", line).Msg("executing")
		s.report(s.mgr.Execute(line))
	}
	return false
}

func (s *Shell) report(result string, err error) {
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if result != "" {
		fmt.Fprintln(s.out, result)
	}
}

func (s *Shell) printHistory() {
	n := s.mgr.NumHistoryItems()
	if n == 0 {
		fmt.Fprintln(s.out, "history is empty")
		return
	}

	cursor := s.mgr.HistoryIndex()
	for i := 0; i < n; i++ {
		entry, err := s.mgr.HistoryEntry(i)
		if err != nil {
			continue
		}
		marker := "  "
		if i == cursor {
			marker = "* "
		}
		fmt.Fprintf(s.out, "%s%s\n", marker, entry.String())
	}
}

func (s *Shell) printErrors() {
	errs := s.mgr.Errors()
	if len(errs) == 0 {
		fmt.Fprintln(s.out, "no errors")
		return
	}
	for _, line := range errs {
		fmt.Fprintln(s.out, line)
	}
}

func (s *Shell) printCommands() {
	for _, name := range s.mgr.Registry().Names() {
		fmt.Fprintln(s.out, name)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `built-ins:
  undo      undo the last command
  redo      redo the next command
  history   show the command history
  errors    show collected errors
  commands  list registered commands
  help      show this text
  quit      exit the shell

anything else is executed as a command line, e.g. "set name value"`)
}
