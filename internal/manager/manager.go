package manager

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/cmdstack/internal/command"
	"github.com/dshills/cmdstack/internal/commandline"
	"github.com/dshills/cmdstack/internal/group"
	"github.com/dshills/cmdstack/internal/history"
)

// Config holds manager configuration options.
type Config struct {
	// MaxHistoryItems bounds the undo/redo history. Zero selects the
	// default bound.
	MaxHistoryItems int

	// EnableMetrics enables execution timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps command execution in panic recovery.
	RecoverFromPanic bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxHistoryItems:  history.DefaultMaxEntries,
		EnableMetrics:    false,
		RecoverFromPanic: true,
	}
}

// WithMaxHistoryItems returns a copy of the config with the history bound
// set.
func (c Config) WithMaxHistoryItems(n int) Config {
	c.MaxHistoryItems = n
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// ExecOptions controls a single top-level invocation.
type ExecOptions struct {
	// AddToHistory records successful undoable executions in history.
	AddToHistory bool

	// ClearErrors empties the error collector before executing.
	ClearErrors bool

	// HandleErrors dispatches the error report automatically when the
	// invocation leaves errors behind.
	HandleErrors bool
}

// DefaultExecOptions returns the options used by Execute.
func DefaultExecOptions() ExecOptions {
	return ExecOptions{
		AddToHistory: true,
		ClearErrors:  true,
		HandleErrors: true,
	}
}

// insideCommandOptions are the options for nested invocations: share the
// outer error buffer, never auto-report, never touch history.
func insideCommandOptions() ExecOptions {
	return ExecOptions{}
}

// Manager composes the registry, history, callbacks, and error collector,
// and is the sole entry point for executing, undoing, redoing, and
// inspecting commands.
//
// The manager is designed for single-goroutine, synchronous, reentrant use:
// a command may execute further commands through ExecuteInsideCommand within
// the same call stack. Concurrent invocation from multiple goroutines must
// be serialized by the caller.
type Manager struct {
	registry *Registry
	history  *history.Stack

	callbacks []Callback
	errs      []string

	pendingGroup *group.Group

	config  Config
	metrics *Metrics
	log     zerolog.Logger
}

// New creates a manager with the given configuration.
func New(config Config) *Manager {
	m := &Manager{
		registry: NewRegistry(),
		history:  history.NewStack(config.MaxHistoryItems),
		config:   config,
		log:      zerolog.Nop(),
	}

	if config.EnableMetrics {
		m.metrics = NewMetrics()
	}

	return m
}

// NewWithDefaults creates a manager with the default configuration.
func NewWithDefaults() *Manager {
	return New(DefaultConfig())
}

// SetLogger sets the structured logger. The default logger discards all
// output.
func (m *Manager) SetLogger(log zerolog.Logger) {
	m.log = log
}

// Registry returns the command registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Metrics returns the metrics collector (nil when disabled).
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Config returns the manager configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Shutdown releases registered commands and callbacks and clears the
// history.
func (m *Manager) Shutdown() {
	m.RemoveCallbacks()
	m.registry.Clear()
	m.history.Clear()
}

// RegisterCommand adds a command to the registry. Registration fails when a
// command with the same case-insensitive name already exists.
func (m *Manager) RegisterCommand(cmd command.Command) error {
	if err := m.registry.Register(cmd); err != nil {
		return err
	}
	m.log.Debug().Str("command", cmd.Name()).Msg("registered command")
	return nil
}

// UnregisterCommand removes a command by name.
func (m *Manager) UnregisterCommand(name string) bool {
	removed := m.registry.Unregister(name)
	if removed {
		m.log.Debug().Str("command", name).Msg("unregistered command")
	}
	return removed
}

// FindCommand returns the registered command with the given
// case-insensitive name, or nil.
func (m *Manager) FindCommand(name string) command.Command {
	return m.registry.Find(name)
}

// NumRegisteredCommands returns the number of registered commands.
func (m *Manager) NumRegisteredCommands() int {
	return m.registry.Count()
}

// Command returns the registered command at index i in registration order.
func (m *Manager) Command(i int) (command.Command, error) {
	return m.registry.Get(i)
}

// Execute parses and runs a command string, recording it in history when it
// succeeds and is undoable.
func (m *Manager) Execute(text string) (string, error) {
	return m.ExecuteWithOptions(text, DefaultExecOptions())
}

// ExecuteInsideCommand runs a command string from within another command's
// execution. The nested invocation shares the outer error buffer, never
// clears it, never auto-reports, and never touches history.
func (m *Manager) ExecuteInsideCommand(text string) (string, error) {
	return m.ExecuteWithOptions(text, insideCommandOptions())
}

// ExecuteWithOptions parses and runs a command string with explicit
// invocation options.
func (m *Manager) ExecuteWithOptions(text string, opts ExecOptions) (string, error) {
	if opts.ClearErrors {
		m.errs = m.errs[:0]
	}

	name, cl, err := commandline.Parse(text)
	if err != nil {
		return m.fail(opts, "", err)
	}

	proto := m.registry.Find(name)
	if proto == nil {
		return m.fail(opts, "", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	}

	return m.executeResolved(proto, cl, opts, nil)
}

// ExecuteGroup runs every command in the group in order and records the
// group as a single history entry when appropriate.
func (m *Manager) ExecuteGroup(g *group.Group) (string, error) {
	return m.ExecuteGroupWithOptions(g, DefaultExecOptions())
}

// ExecuteGroupInsideCommand runs a group from within another command's
// execution, sharing the outer error buffer and skipping history.
func (m *Manager) ExecuteGroupInsideCommand(g *group.Group) (string, error) {
	return m.ExecuteGroupWithOptions(g, insideCommandOptions())
}

// ExecuteGroupWithOptions runs a group with explicit invocation options.
//
// Commands already executed when a member fails are not rolled back; whether
// execution continues and whether the partial group still enters history
// follow the group's policy flags. The returned result and error reflect the
// last failing command when any member failed.
func (m *Manager) ExecuteGroupWithOptions(g *group.Group, opts ExecOptions) (string, error) {
	if opts.ClearErrors {
		m.errs = m.errs[:0]
	}

	g.ClearInvocations()

	inner := insideCommandOptions()
	var lastResult string
	var lastErr error

	for i := 0; i < g.Len(); i++ {
		result, err := m.executeItem(g.Item(i), inner, g)

		lastResult = result
		if err != nil {
			lastErr = err
			if !g.ContinueAfterError() {
				break
			}
		}
	}

	recordable := lastErr == nil || g.AddToHistoryAfterError()
	if opts.AddToHistory && recordable && g.HasUndoable() {
		m.history.Push(history.NewGroupEntry(g.Snapshot()))
	}

	if opts.HandleErrors && len(m.errs) > 0 {
		m.ShowErrorReport()
	}

	if lastErr != nil {
		return lastResult, fmt.Errorf("group %q: %w", g.Name(), lastErr)
	}
	return lastResult, nil
}

// ExecuteGroupRollback runs the group, aborting at the first failing member
// and undoing the already-executed undoable members in reverse order. A
// failed group never enters history.
func (m *Manager) ExecuteGroupRollback(g *group.Group) (string, error) {
	m.errs = m.errs[:0]
	g.ClearInvocations()

	inner := insideCommandOptions()
	var lastResult string
	var execErr error

	for i := 0; i < g.Len(); i++ {
		lastResult, execErr = m.executeItem(g.Item(i), inner, g)
		if execErr != nil {
			break
		}
	}

	if execErr != nil {
		if _, uerr := m.undoGroup(g); uerr != nil {
			m.errs = append(m.errs, uerr.Error())
		}
		m.ShowErrorReport()
		return lastResult, fmt.Errorf("group %q: %w", g.Name(), execErr)
	}

	if g.HasUndoable() {
		m.history.Push(history.NewGroupEntry(g.Snapshot()))
	}
	if len(m.errs) > 0 {
		m.ShowErrorReport()
	}
	return lastResult, nil
}

// executeItem resolves and runs one group item, recording the execution
// into the group.
func (m *Manager) executeItem(item group.Item, opts ExecOptions, g *group.Group) (string, error) {
	if item.Cmd != nil {
		return m.executeResolved(item.Cmd, item.Params, opts, g)
	}

	name, cl, err := commandline.Parse(item.Text)
	if err != nil {
		m.errs = append(m.errs, err.Error())
		return "", err
	}

	proto := m.registry.Find(name)
	if proto == nil {
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		m.errs = append(m.errs, err.Error())
		return "", err
	}

	return m.executeResolved(proto, cl, opts, g)
}

// executeResolved runs a resolved command through the callback lifecycle.
// When sink is non-nil the execution is recorded into that group; otherwise
// successful undoable executions enter the history (or the pending group
// opened by BeginGroup).
func (m *Manager) executeResolved(proto command.Command, cl commandline.CommandLine, opts ExecOptions, sink *group.Group) (string, error) {
	// Commands with per-invocation undo state execute on a fresh clone
	// so repeated executions undo independently; the clone is what
	// history keeps alive.
	exec := proto
	if c, ok := proto.(command.Cloner); ok {
		exec = c.Clone()
	}

	name := proto.Name()
	m.firePreExecute(proto, name, cl)

	start := time.Now()
	result, err := m.runExecute(exec, cl)
	if m.metrics != nil {
		m.metrics.RecordExecute(name, time.Since(start), err == nil)
	}

	m.firePostExecute(proto, name, cl, result, err)

	if err != nil {
		m.errs = append(m.errs, err.Error())
		if opts.HandleErrors {
			m.ShowErrorReport()
		}
		return result, fmt.Errorf("command %q: %w", name, err)
	}

	switch {
	case sink != nil:
		sink.RecordInvocation(exec, cl)
	case opts.AddToHistory && m.pendingGroup != nil:
		m.pendingGroup.RecordInvocation(exec, cl)
	case opts.AddToHistory && exec.Undoable():
		m.history.Push(history.NewCommandEntry(exec, cl))
	}

	if opts.HandleErrors && len(m.errs) > 0 {
		m.ShowErrorReport()
	}

	m.log.Debug().Str("command", name).Str("args", cl.String()).Msg("executed command")
	return result, nil
}

// fail records an invocation failure in the error collector and reports it
// when the options ask for automatic handling.
func (m *Manager) fail(opts ExecOptions, result string, err error) (string, error) {
	m.errs = append(m.errs, err.Error())
	if opts.HandleErrors {
		m.ShowErrorReport()
	}
	return result, err
}

// Undo reverses the history entry at the cursor. Groups undo their members
// in strict reverse execution order as one atomic step. The cursor moves
// only when the undo succeeds.
func (m *Manager) Undo() (string, error) {
	e, err := m.history.PeekUndo()
	if err != nil {
		return "", err
	}

	var result string
	var uerr error
	if e.IsGroup() {
		result, uerr = m.undoGroup(e.Group())
	} else {
		result, uerr = m.undoCommand(e.Command(), e.Params())
	}

	if uerr != nil {
		m.errs = append(m.errs, uerr.Error())
		m.ShowErrorReport()
		return result, uerr
	}

	m.history.StepBack()
	return result, nil
}

// Redo re-executes the history entry above the cursor. Groups replay their
// members in original execution order. The cursor moves only when the redo
// succeeds.
func (m *Manager) Redo() (string, error) {
	e, err := m.history.PeekRedo()
	if err != nil {
		return "", err
	}

	var result string
	var rerr error
	if e.IsGroup() {
		for _, inv := range e.Group().Invocations() {
			result, rerr = m.redoCommand(inv.Cmd, inv.Params)
			if rerr != nil {
				break
			}
		}
	} else {
		result, rerr = m.redoCommand(e.Command(), e.Params())
	}

	if rerr != nil {
		m.errs = append(m.errs, rerr.Error())
		m.ShowErrorReport()
		return result, rerr
	}

	m.history.StepForward()
	return result, nil
}

// undoGroup undoes recorded invocations in reverse order, skipping members
// that are not undoable. The first failure aborts the walk.
func (m *Manager) undoGroup(g *group.Group) (string, error) {
	invs := g.Invocations()

	var result string
	for i := len(invs) - 1; i >= 0; i-- {
		inv := invs[i]
		if !inv.Cmd.Undoable() {
			continue
		}

		r, err := m.undoCommand(inv.Cmd, inv.Params)
		if err != nil {
			return r, fmt.Errorf("group %q: %w", g.Name(), err)
		}
		result = r
	}
	return result, nil
}

// undoCommand runs one command's undo through the callback lifecycle.
func (m *Manager) undoCommand(cmd command.Command, cl commandline.CommandLine) (string, error) {
	name := cmd.Name()

	// Per-command callbacks live on the registered prototype, which may
	// differ from the executed clone held by history.
	holder := cmd
	if proto := m.registry.Find(name); proto != nil {
		holder = proto
	}

	m.firePreUndo(holder, name, cl)

	start := time.Now()
	result, err := m.runUndo(cmd, cl)
	if m.metrics != nil {
		m.metrics.RecordUndo(name, time.Since(start), err == nil)
	}

	m.firePostUndo(holder, name, cl, result, err)

	if err != nil {
		return result, fmt.Errorf("undo %q: %w", name, err)
	}
	return result, nil
}

// redoCommand re-executes a history-held command through the callback
// lifecycle without touching history.
func (m *Manager) redoCommand(cmd command.Command, cl commandline.CommandLine) (string, error) {
	name := cmd.Name()

	holder := cmd
	if proto := m.registry.Find(name); proto != nil {
		holder = proto
	}

	m.firePreExecute(holder, name, cl)

	start := time.Now()
	result, err := m.runExecute(cmd, cl)
	if m.metrics != nil {
		m.metrics.RecordRedo(name, time.Since(start), err == nil)
	}

	m.firePostExecute(holder, name, cl, result, err)

	if err != nil {
		return result, fmt.Errorf("redo %q: %w", name, err)
	}
	return result, nil
}

// runExecute executes a command, optionally converting panics to errors.
func (m *Manager) runExecute(cmd command.Command, cl commandline.CommandLine) (result string, err error) {
	if m.config.RecoverFromPanic {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				err = fmt.Errorf("command panic: %v\n%s", r, stack[:n])
			}
		}()
	}
	return cmd.Execute(cl)
}

// runUndo undoes a command, optionally converting panics to errors.
func (m *Manager) runUndo(cmd command.Command, cl commandline.CommandLine) (result string, err error) {
	if m.config.RecoverFromPanic {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				err = fmt.Errorf("undo panic: %v\n%s", r, stack[:n])
			}
		}()
	}
	return cmd.Undo(cl)
}

// BeginGroup opens a pending group: subsequent Execute calls record into the
// group instead of pushing individual history entries. Nested BeginGroup
// calls are ignored.
func (m *Manager) BeginGroup(name string) {
	if m.pendingGroup != nil {
		return
	}
	m.pendingGroup = group.New(name)
}

// EndGroup closes the pending group and pushes it as a single history entry
// when it recorded at least one undoable execution.
func (m *Manager) EndGroup() {
	g := m.pendingGroup
	m.pendingGroup = nil

	if g == nil || !g.HasUndoable() {
		return
	}
	m.history.Push(history.NewGroupEntry(g))
}

// CancelGroup discards the pending group without touching history. Commands
// already executed keep their side effects.
func (m *Manager) CancelGroup() {
	m.pendingGroup = nil
}

// IsGrouping returns true while a pending group is open.
func (m *Manager) IsGrouping() bool {
	return m.pendingGroup != nil
}

// Transaction executes fn with a pending group open, batching every command
// it executes into one history entry. If fn returns an error the group is
// cancelled; already executed commands keep their side effects.
func (m *Manager) Transaction(name string, fn func() error) error {
	m.BeginGroup(name)

	if err := fn(); err != nil {
		m.CancelGroup()
		return err
	}

	m.EndGroup()
	return nil
}

// RegisterCallback adds a manager-level callback. Registration order is
// notification order.
func (m *Manager) RegisterCallback(cb Callback) {
	m.callbacks = append(m.callbacks, cb)
}

// RemoveCallback removes a manager-level callback. Returns false if the
// callback was not registered.
func (m *Manager) RemoveCallback(cb Callback) bool {
	for i, existing := range m.callbacks {
		if existing == cb {
			m.callbacks = append(m.callbacks[:i], m.callbacks[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveCallbacks removes all manager-level callbacks.
func (m *Manager) RemoveCallbacks() {
	m.callbacks = nil
}

// NumCallbacks returns the number of manager-level callbacks.
func (m *Manager) NumCallbacks() int {
	return len(m.callbacks)
}

// Callback returns the manager-level callback at index i.
func (m *Manager) Callback(i int) (Callback, error) {
	if i < 0 || i >= len(m.callbacks) {
		return nil, ErrIndexOutOfRange
	}
	return m.callbacks[i], nil
}

// RegisterCommandCallback attaches a callback to the command with the given
// name.
func (m *Manager) RegisterCommandCallback(name string, cb command.Callback) error {
	proto := m.registry.Find(name)
	if proto == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	holder, ok := proto.(command.CallbackHolder)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCallbacksUnsupported, name)
	}

	holder.RegisterCallback(cb)
	return nil
}

// RemoveCommandCallback detaches a callback from the command with the given
// name.
func (m *Manager) RemoveCommandCallback(name string, cb command.Callback) error {
	proto := m.registry.Find(name)
	if proto == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	holder, ok := proto.(command.CallbackHolder)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCallbacksUnsupported, name)
	}

	holder.RemoveCallback(cb)
	return nil
}

// RemoveCommandCallbackAll detaches the callback from every registered
// command that carries it. Returns the number of removals.
func (m *Manager) RemoveCommandCallbackAll(cb command.Callback) int {
	removed := 0
	for _, cmd := range m.registry.Commands() {
		if holder, ok := cmd.(command.CallbackHolder); ok {
			if holder.RemoveCallback(cb) {
				removed++
			}
		}
	}
	return removed
}

// snapshotCallbacks copies the manager-level callback list so dispatch
// tolerates reentrant registration and removal.
func (m *Manager) snapshotCallbacks() []Callback {
	out := make([]Callback, len(m.callbacks))
	copy(out, m.callbacks)
	return out
}

// commandCallbacks returns the per-command callbacks of a command, if any.
func commandCallbacks(cmd command.Command) []command.Callback {
	if holder, ok := cmd.(command.CallbackHolder); ok {
		return holder.Callbacks()
	}
	return nil
}

func (m *Manager) firePreExecute(holder command.Command, name string, cl commandline.CommandLine) {
	for _, cb := range m.snapshotCallbacks() {
		cb.PreExecute(name, cl)
	}
	for _, cb := range commandCallbacks(holder) {
		cb.PreExecute(cl)
	}
}

func (m *Manager) firePostExecute(holder command.Command, name string, cl commandline.CommandLine, result string, err error) {
	for _, cb := range m.snapshotCallbacks() {
		cb.PostExecute(name, cl, result, err)
	}
	for _, cb := range commandCallbacks(holder) {
		cb.PostExecute(cl, result, err)
	}
}

func (m *Manager) firePreUndo(holder command.Command, name string, cl commandline.CommandLine) {
	for _, cb := range m.snapshotCallbacks() {
		cb.PreUndo(name, cl)
	}
	for _, cb := range commandCallbacks(holder) {
		cb.PreUndo(cl)
	}
}

func (m *Manager) firePostUndo(holder command.Command, name string, cl commandline.CommandLine, result string, err error) {
	for _, cb := range m.snapshotCallbacks() {
		cb.PostUndo(name, cl, result, err)
	}
	for _, cb := range commandCallbacks(holder) {
		cb.PostUndo(cl, result, err)
	}
}

// AddError appends a line to the error collector. Commands call this to
// report problems that should surface in the batched error report.
func (m *Manager) AddError(line string) {
	m.errs = append(m.errs, line)
}

// Errors returns a copy of the collected error lines.
func (m *Manager) Errors() []string {
	out := make([]string, len(m.errs))
	copy(out, m.errs)
	return out
}

// ClearErrors empties the error collector.
func (m *Manager) ClearErrors() {
	m.errs = m.errs[:0]
}

// ShowErrorReport dispatches the collected errors to every manager-level
// callback's error hook and clears the collector. Returns false when there
// was nothing to report.
func (m *Manager) ShowErrorReport() bool {
	if len(m.errs) == 0 {
		return false
	}

	report := make([]string, len(m.errs))
	copy(report, m.errs)
	m.errs = m.errs[:0]

	for _, cb := range m.snapshotCallbacks() {
		cb.ShowErrorReport(report)
	}

	m.log.Error().Int("count", len(report)).Strs("errors", report).Msg("command error report")
	return true
}

// HistoryIndex returns the history cursor, or -1 when before the first
// entry.
func (m *Manager) HistoryIndex() int {
	return m.history.Index()
}

// NumHistoryItems returns the number of stored history entries.
func (m *Manager) NumHistoryItems() int {
	return m.history.Len()
}

// HistoryEntry returns the history entry at index i.
func (m *Manager) HistoryEntry(i int) (*history.Entry, error) {
	return m.history.Entry(i)
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	return m.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	return m.history.CanRedo()
}

// ClearHistory removes all history entries.
func (m *Manager) ClearHistory() {
	m.history.Clear()
}

// SetMaxHistoryItems changes the history bound, evicting oldest entries
// immediately when the current size exceeds it.
func (m *Manager) SetMaxHistoryItems(n int) {
	m.history.SetMaxEntries(n)
}

// MaxHistoryItems returns the history bound.
func (m *Manager) MaxHistoryItems() int {
	return m.history.MaxEntries()
}

// LogCommandHistory writes the current history to the structured logger,
// marking the cursor position.
func (m *Manager) LogCommandHistory() {
	infos := m.history.Infos()
	index := m.history.Index()

	m.log.Info().Int("entries", len(infos)).Int("cursor", index).Msg("command history")
	for i, info := range infos {
		m.log.Info().
			Int("index", i).
			Uint64("item", info.ItemNr).
			Str("command", info.Description).
			Bool("current", i == index).
			Msg("history entry")
	}
}
