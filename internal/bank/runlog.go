package bank

import (
	"sync"
	"time"
)

// LogLevel classifies run log entries.
type LogLevel string

const (
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
)

// LogEntry is one line of the session run log, exported as CSV on demand.
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Source    string
	Message   string
}

// RunLog records human-readable pipeline events for the session. It is
// separate from the process logger: the run log is user-facing session
// state that is cleared with the rest of the session.
type RunLog struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func NewRunLog() *RunLog {
	return &RunLog{}
}

func (l *RunLog) append(level LogLevel, source, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Source:    source,
		Message:   message,
	})
}

func (l *RunLog) Info(source, message string)  { l.append(LogInfo, source, message) }
func (l *RunLog) Warn(source, message string)  { l.append(LogWarn, source, message) }
func (l *RunLog) Error(source, message string) { l.append(LogError, source, message) }

// Entries returns a copy of the log in append order.
func (l *RunLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *RunLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
