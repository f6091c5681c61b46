package manager

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects command execution statistics.
type Metrics struct {
	mu sync.RWMutex

	// Per-command metrics
	commandMetrics map[string]*CommandMetrics

	// Global counters
	totalExecutes uint64
	totalUndos    uint64
	totalRedos    uint64
	totalErrors   uint64

	// Timing
	totalDuration time.Duration
}

// CommandMetrics holds metrics for a specific command.
type CommandMetrics struct {
	Name          string
	ExecuteCount  uint64
	UndoCount     uint64
	RedoCount     uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastRun       time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commandMetrics: make(map[string]*CommandMetrics),
	}
}

// RecordExecute records a command execution.
func (m *Metrics) RecordExecute(name string, duration time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalExecutes++
	m.record(name, duration, ok, func(cm *CommandMetrics) { cm.ExecuteCount++ })
}

// RecordUndo records an undo of a command.
func (m *Metrics) RecordUndo(name string, duration time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalUndos++
	m.record(name, duration, ok, func(cm *CommandMetrics) { cm.UndoCount++ })
}

// RecordRedo records a redo of a command.
func (m *Metrics) RecordRedo(name string, duration time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRedos++
	m.record(name, duration, ok, func(cm *CommandMetrics) { cm.RedoCount++ })
}

// record updates shared counters. Callers hold the lock.
func (m *Metrics) record(name string, duration time.Duration, ok bool, bump func(*CommandMetrics)) {
	m.totalDuration += duration
	if !ok {
		m.totalErrors++
	}

	cm := m.commandMetrics[name]
	if cm == nil {
		cm = &CommandMetrics{
			Name:        name,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.commandMetrics[name] = cm
	}

	bump(cm)
	cm.TotalDuration += duration
	cm.LastRun = time.Now()

	if duration < cm.MinDuration {
		cm.MinDuration = duration
	}
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}
	if !ok {
		cm.ErrorCount++
	}
}

// TotalExecutes returns the total number of command executions.
func (m *Metrics) TotalExecutes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalExecutes
}

// TotalUndos returns the total number of undos.
func (m *Metrics) TotalUndos() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalUndos
}

// TotalRedos returns the total number of redos.
func (m *Metrics) TotalRedos() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalRedos
}

// TotalErrors returns the total number of failed runs.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// CommandStats returns a copy of the metrics for a specific command, or nil
// if the command never ran.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commandMetrics[name]
	if cm == nil {
		return nil
	}

	out := *cm
	return &out
}

// TopCommands returns the top N most executed commands.
func (m *Metrics) TopCommands(n int) []*CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]*CommandMetrics, 0, len(m.commandMetrics))
	for _, cm := range m.commandMetrics {
		out := *cm
		commands = append(commands, &out)
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].ExecuteCount > commands[j].ExecuteCount
	})

	if n > len(commands) {
		n = len(commands)
	}
	return commands[:n]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commandMetrics = make(map[string]*CommandMetrics)
	m.totalExecutes = 0
	m.totalUndos = 0
	m.totalRedos = 0
	m.totalErrors = 0
	m.totalDuration = 0
}

// AverageDuration returns the average run duration across all commands.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.totalExecutes + m.totalUndos + m.totalRedos
	if total == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(total)
}
